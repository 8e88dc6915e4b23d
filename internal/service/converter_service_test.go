package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"papershare_backend/internal/config"
	"papershare_backend/internal/util"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/phpdave11/gofpdf"
)

func converterForTest(t *testing.T) *ConverterService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Site.BaseURL = "papershare.example.edu"
	cfg.Convert.GhostscriptPath = "gs"
	cfg.Convert.TimeoutSeconds = 10
	cfg.Convert.MaxCompressMB = 60
	return NewConverterService(cfg)
}

func TestNormalizedPageSize(t *testing.T) {
	cases := []struct {
		name          string
		width, height float64
		wantW, wantH  float64
		wantOrient    string
		wantResized   bool
	}{
		{"a4 portrait untouched", 595.28, 841.89, 595.28, 841.89, "P", false},
		{"exactly at threshold untouched", 650, 900, 650, 900, "P", false},
		{"oversize portrait to a4", 769.76, 1113.17, 595.28, 841.89, "P", true},
		{"oversize landscape to a4", 1113.17, 769.76, 841.89, 595.28, "L", true},
		{"wide but within threshold", 640, 480, 640, 480, "L", false},
		{"only height oversize", 600, 950, 595.28, 841.89, "P", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, orient, resized := normalizedPageSize(tc.width, tc.height)
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("got %gx%g, want %gx%g", w, h, tc.wantW, tc.wantH)
			}
			if orient != tc.wantOrient {
				t.Fatalf("got orientation %q, want %q", orient, tc.wantOrient)
			}
			if resized != tc.wantResized {
				t.Fatalf("got resized %v, want %v", resized, tc.wantResized)
			}
		})
	}
}

func TestWatermarkTextDeterministic(t *testing.T) {
	svc := converterForTest(t)

	got := svc.WatermarkText("张三")
	want := "papershare.example.edu - uploaded by 张三"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if svc.WatermarkText("张三") != got {
		t.Fatal("watermark text not deterministic")
	}
}

func TestConvertEmptyInput(t *testing.T) {
	svc := converterForTest(t)
	if _, err := svc.Convert(context.Background(), nil, "alice"); !errors.Is(err, util.ErrOriginalUnreadable) {
		t.Fatalf("got %v, want ErrOriginalUnreadable", err)
	}
}

// stampToFile 测试用stamp替身，把固定内容写进目标文件
func stampToFile(content string) func(srcPath, dstPath, watermark string) error {
	return func(srcPath, dstPath, watermark string) error {
		return os.WriteFile(dstPath, []byte(content), 0644)
	}
}

type stubCompressor struct {
	output string
	err    error
	called bool
}

func (c *stubCompressor) Compress(ctx context.Context, inPath, outPath string) error {
	c.called = true
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(outPath, []byte(c.output), 0644)
}

func TestConvertStampFailureIsHardError(t *testing.T) {
	svc := converterForTest(t)
	svc.stamp = func(srcPath, dstPath, watermark string) error {
		return errors.New("broken xref")
	}

	_, err := svc.Convert(context.Background(), []byte("%PDF-1.4 fake"), "alice")
	if err == nil {
		t.Fatal("expected error when watermarking fails")
	}
}

func TestConvertPrefersCompressedOutput(t *testing.T) {
	svc := converterForTest(t)
	svc.stamp = stampToFile("stamped-version-padding-padding")
	compressor := &stubCompressor{output: "small"}
	svc.compressor = compressor

	got, err := svc.Convert(context.Background(), []byte("%PDF-1.4 fake"), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "small" {
		t.Fatalf("got %q, want compressed output", got)
	}
	if !compressor.called {
		t.Fatal("compressor was not invoked")
	}
}

func TestConvertFallsBackWhenCompressionFails(t *testing.T) {
	svc := converterForTest(t)
	svc.stamp = stampToFile("stamped-version")
	svc.compressor = &stubCompressor{err: errors.New("gs exited 1")}

	got, err := svc.Convert(context.Background(), []byte("%PDF-1.4 fake"), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "stamped-version" {
		t.Fatalf("got %q, want watermarked fallback", got)
	}
}

func TestConvertRejectsLargerCompressedOutput(t *testing.T) {
	svc := converterForTest(t)
	svc.stamp = stampToFile("short")
	svc.compressor = &stubCompressor{output: "much-longer-than-the-stamped-file"}

	got, err := svc.Convert(context.Background(), []byte("%PDF-1.4 fake"), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "short" {
		t.Fatalf("got %q, want watermarked version", got)
	}
}

func TestConvertSkipsCompressionAboveCeiling(t *testing.T) {
	svc := converterForTest(t)
	svc.cfg.Convert.MaxCompressMB = 1
	svc.stamp = stampToFile("stamped-version")
	compressor := &stubCompressor{output: "x"}
	svc.compressor = compressor

	big := []byte(strings.Repeat("a", 2*1024*1024))
	got, err := svc.Convert(context.Background(), big, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "stamped-version" {
		t.Fatalf("got %q, want watermarked version", got)
	}
	if compressor.called {
		t.Fatal("compressor must not run above the size ceiling")
	}
}

// writeTestPDF 生成一份真实的两页PDF供导入路径使用
func writeTestPDF(t *testing.T, path string) {
	t.Helper()
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Text(40, 60, "page one")
	doc.AddPage()
	doc.Text(40, 60, "page two")
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}
}

func TestStampAndNormalize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	writeTestPDF(t, src)

	dst := filepath.Join(dir, "out.pdf")
	if err := stampAndNormalize(src, dst, "papershare.example.edu - uploaded by alice"); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := util.PDFPageCount(out)
	if err != nil {
		t.Fatalf("output is not a parseable pdf: %v", err)
	}
	if pages != 2 {
		t.Fatalf("got %d pages, want 2", pages)
	}
}

// 每次上传各跑一个转换goroutine，导入器状态不能在调用之间共享
func TestStampAndNormalizeConcurrent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	writeTestPDF(t, src)

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dst := filepath.Join(dir, fmt.Sprintf("out-%d.pdf", i))
			errs[i] = stampAndNormalize(src, dst, "papershare.example.edu - uploaded by alice")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("conversion %d failed: %v", i, err)
		}
		out, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("out-%d.pdf", i)))
		if err != nil {
			t.Fatal(err)
		}
		if pages, err := util.PDFPageCount(out); err != nil || pages != 2 {
			t.Fatalf("conversion %d produced a bad pdf: pages=%d err=%v", i, pages, err)
		}
	}
}

func TestApplyConfigSwapsWatermarkSource(t *testing.T) {
	svc := converterForTest(t)

	next := &config.Config{}
	next.Site.BaseURL = "papers.other.edu"
	next.Convert.GhostscriptPath = "gs"
	next.Convert.TimeoutSeconds = 10
	svc.ApplyConfig(next)

	if got := svc.WatermarkText("bob"); got != "papers.other.edu - uploaded by bob" {
		t.Fatalf("got %q after reload", got)
	}
}
