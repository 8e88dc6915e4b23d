package util

import (
	"bytes"
	"errors"
	"testing"
)

func TestNormalizeSection(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"   ":   "",
		"A":     "A",
		" A ":   "A",
		"B卷":    "B卷",
		"\tA\n": "A",
	}
	for in, want := range cases {
		if got := NormalizeSection(in); got != want {
			t.Errorf("NormalizeSection(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateMimeTypePDF(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")
	mime, err := ValidateMimeType(bytes.NewReader(pdfBytes), []string{MimePDF})
	if err != nil {
		t.Fatalf("pdf header rejected: %v (detected %q)", err, mime)
	}
}

func TestValidateMimeTypeRejectsOthers(t *testing.T) {
	if _, err := ValidateMimeType(bytes.NewReader([]byte("<html><body>")), []string{MimePDF}); err == nil {
		t.Fatal("html accepted as pdf")
	}
	if _, err := ValidateMimeType(bytes.NewReader([]byte{0x89, 'P', 'N', 'G', '\r', '\n'}), []string{MimePDF}); err == nil {
		t.Fatal("png accepted as pdf")
	}
}

func TestPDFPageCountRejectsGarbage(t *testing.T) {
	if _, err := PDFPageCount([]byte("definitely not a pdf")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("got %v, want ErrNotPDF", err)
	}
	// 只有魔数没有结构的文件同样拒绝
	if _, err := PDFPageCount([]byte("%PDF-1.4 truncated")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("got %v, want ErrNotPDF", err)
	}
}
