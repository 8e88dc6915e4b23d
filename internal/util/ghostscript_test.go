package util

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewGhostscriptCompressorDefaults(t *testing.T) {
	g := NewGhostscriptCompressor("", 0)
	if g.Binary != "gs" {
		t.Fatalf("got binary %q", g.Binary)
	}
	if g.Timeout != 3*time.Minute {
		t.Fatalf("got timeout %v", g.Timeout)
	}

	g = NewGhostscriptCompressor("/opt/gs/bin/gs", 30*time.Second)
	if g.Binary != "/opt/gs/bin/gs" || g.Timeout != 30*time.Second {
		t.Fatalf("explicit values not kept: %+v", g)
	}
}

func TestCompressMissingBinary(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	g := NewGhostscriptCompressor(filepath.Join(dir, "no-such-gs"), time.Second)
	if err := g.Compress(context.Background(), in, filepath.Join(dir, "out.pdf")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestCompressTimeoutKillsProcess(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	// 卡死的gs替身，验证超时后进程被杀掉
	stub := filepath.Join(dir, "gs-stub")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nsleep 30\n"), 0755); err != nil {
		t.Fatal(err)
	}

	g := NewGhostscriptCompressor(stub, 100*time.Millisecond)
	start := time.Now()
	err := g.Compress(context.Background(), in, filepath.Join(dir, "out.pdf"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("process was not killed promptly")
	}
}
