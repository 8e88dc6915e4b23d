package service

import (
	"context"
	"fmt"
	"os"
	"papershare_backend/internal/config"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/logger"
	"papershare_backend/pkg/monitoring"
	"path/filepath"
	"sync"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
	"go.uber.org/zap"
)

// 页面几何归一化参数（pt）。超限页落到A4，方向按原始宽高比决定。
const (
	oversizeWidthPt  = 650.0
	oversizeHeightPt = 900.0
	a4WidthPt        = 595.28
	a4HeightPt       = 841.89
)

// Compressor 外部压缩工具协议，默认实现是Ghostscript子进程
type Compressor interface {
	Compress(ctx context.Context, inPath, outPath string) error
}

// ConverterService 把上传的原始PDF转换为对外分发的版本：
// 逐页加水印、超限页面归一化到A4，再交给外部工具压缩。
// 任何一步失败都降级到上一个可用的表示，绝不让上传失败；
// 原始字节在整个管线中只读。
type ConverterService struct {
	mu         sync.RWMutex
	cfg        *config.Config
	compressor Compressor
	stamp      func(srcPath, dstPath, watermark string) error
}

func NewConverterService(cfg *config.Config) *ConverterService {
	return &ConverterService{
		cfg: cfg,
		compressor: util.NewGhostscriptCompressor(
			cfg.Convert.GhostscriptPath,
			time.Duration(cfg.Convert.TimeoutSeconds)*time.Second,
		),
		stamp: stampAndNormalize,
	}
}

// ApplyConfig 配置热更新回调
func (s *ConverterService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.compressor = util.NewGhostscriptCompressor(
		cfg.Convert.GhostscriptPath,
		time.Duration(cfg.Convert.TimeoutSeconds)*time.Second,
	)
}

func (s *ConverterService) snapshot() (*config.Config, Compressor) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.compressor
}

// WatermarkText 水印文本只由站点地址和上传者姓名决定，可重复生成
func (s *ConverterService) WatermarkText(uploaderName string) string {
	cfg, _ := s.snapshot()
	return fmt.Sprintf("%s - uploaded by %s", cfg.Site.BaseURL, uploaderName)
}

// Convert 返回对外分发的PDF字节。
// 压缩失败或被跳过时返回仅加水印的版本；加水印都失败时返回错误，
// 调用方应让下载端退回原件。只有原始字节本身不可读才算硬错误。
func (s *ConverterService) Convert(ctx context.Context, original []byte, uploaderName string) ([]byte, error) {
	if len(original) == 0 {
		return nil, util.ErrOriginalUnreadable
	}

	cfg, compressor := s.snapshot()

	tempDir, err := os.MkdirTemp("", "pdfconv-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	srcPath := filepath.Join(tempDir, "original.pdf")
	if err := os.WriteFile(srcPath, original, 0644); err != nil {
		return nil, err
	}

	stampedPath := filepath.Join(tempDir, "stamped.pdf")
	if err := s.stamp(srcPath, stampedPath, s.WatermarkText(uploaderName)); err != nil {
		monitoring.ConversionCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("watermark: %w", err)
	}

	stamped, err := os.ReadFile(stampedPath)
	if err != nil {
		monitoring.ConversionCounter.WithLabelValues("failed").Inc()
		return nil, err
	}

	maxCompress := int64(cfg.Convert.MaxCompressMB) * 1024 * 1024
	if maxCompress > 0 && int64(len(original)) > maxCompress {
		logger.Log.Info("input above compression ceiling, serving watermarked copy",
			zap.Int("sizeBytes", len(original)))
		monitoring.ConversionCounter.WithLabelValues("watermarked").Inc()
		return stamped, nil
	}

	compressedPath := filepath.Join(tempDir, "compressed.pdf")
	if err := compressor.Compress(ctx, stampedPath, compressedPath); err != nil {
		logger.Log.Warn("pdf compression failed, serving watermarked copy", zap.Error(err))
		monitoring.ConversionCounter.WithLabelValues("watermarked").Inc()
		return stamped, nil
	}

	compressed, err := os.ReadFile(compressedPath)
	if err != nil || len(compressed) == 0 || len(compressed) > len(stamped) {
		// 压缩产物为空或反而变大，按失败处理
		logger.Log.Warn("compression output unusable, serving watermarked copy")
		monitoring.ConversionCounter.WithLabelValues("watermarked").Inc()
		return stamped, nil
	}

	monitoring.ConversionCounter.WithLabelValues("compressed").Inc()
	return compressed, nil
}

// normalizedPageSize 判定单页几何。
// 宽超650pt或高超900pt视为超限，落到A4；恰好在阈值上不算超限。
// 方向由原始宽高比决定（宽≤高为纵向），不看归一化后的尺寸。
func normalizedPageSize(width, height float64) (w, h float64, orientation string, resized bool) {
	orientation = "P"
	if width > height {
		orientation = "L"
	}

	if width <= oversizeWidthPt && height <= oversizeHeightPt {
		return width, height, orientation, false
	}

	if orientation == "P" {
		return a4WidthPt, a4HeightPt, orientation, true
	}
	return a4HeightPt, a4WidthPt, orientation, true
}

// stampAndNormalize 逐页导入原PDF，按需归一化尺寸并盖上水印。
// gofpdi在畸形PDF上会panic，这里统一收敛成错误让上层走降级。
// 转换在每次上传各自的goroutine里并发运行，importer必须每次调用新建，
// 不能用包级共享实例。
func stampAndNormalize(srcPath, dstPath, watermark string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf import failed: %v", r)
		}
	}()

	doc := gofpdf.New("P", "pt", "A4", "")
	imp := gofpdi.NewImporter()

	tpl := imp.ImportPage(doc, srcPath, 1, "/MediaBox")
	sizes := imp.GetPageSizes()
	pageCount := len(sizes)
	if pageCount == 0 {
		return fmt.Errorf("no pages in %s", srcPath)
	}

	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		if pageNo > 1 {
			tpl = imp.ImportPage(doc, srcPath, pageNo, "/MediaBox")
		}

		box := sizes[pageNo]["/MediaBox"]
		width, height := box["w"], box["h"]
		nw, nh, orientation, _ := normalizedPageSize(width, height)

		// AddPageFormat 接受纵向尺寸，横竖由方向参数决定
		size := gofpdf.SizeType{Wd: nw, Ht: nh}
		if nw > nh {
			size = gofpdf.SizeType{Wd: nh, Ht: nw}
		}
		doc.AddPageFormat(orientation, size)

		pageW, pageH := doc.GetPageSize()
		imp.UseImportedTemplate(doc, tpl, 0, 0, pageW, pageH)

		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(128, 128, 128)
		doc.Text(14, pageH-10, watermark)
	}

	if doc.Err() {
		return fmt.Errorf("pdf build failed: %v", doc.Error())
	}
	return doc.OutputFileAndClose(dstPath)
}
