package util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// GhostscriptCompressor 调用外部Ghostscript对PDF做近无损重压缩。
// 打印级质量档（保证试卷可读性），彩色/灰度300dpi，单色600dpi。
// 超时后进程会被强制杀掉（exec.CommandContext负责进程生命周期）。
type GhostscriptCompressor struct {
	Binary  string
	Timeout time.Duration
}

func NewGhostscriptCompressor(binary string, timeout time.Duration) *GhostscriptCompressor {
	if binary == "" {
		binary = "gs"
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &GhostscriptCompressor{Binary: binary, Timeout: timeout}
}

func (g *GhostscriptCompressor) Compress(ctx context.Context, inPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/printer",
		"-dColorImageResolution=300",
		"-dGrayImageResolution=300",
		"-dMonoImageResolution=600",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outPath,
		inPath,
	}

	cmd := exec.CommandContext(ctx, g.Binary, args...)
	// 超时只杀直接子进程，残留的孙进程可能还占着stderr管道，
	// 最多再等1秒就放弃管道读取返回
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("ghostscript timed out after %s", g.Timeout)
	}
	if err != nil {
		return fmt.Errorf("ghostscript failed: %v: %s", err, stderr.String())
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("ghostscript produced no output: %v", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ghostscript produced empty output")
	}

	return nil
}
