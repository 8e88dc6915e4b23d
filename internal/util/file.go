package util

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "application/pdf"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	// 检测 MIME 类型
	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// PDFPageCount 结构化校验PDF并返回页数。
// 仅做能否解析的判定，解析不了的一律当作非PDF拒绝。
func PDFPageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, ErrNotPDF
	}

	n := reader.NumPage()
	if n < 1 {
		return 0, ErrNotPDF
	}
	return n, nil
}

// NormalizeSection 统一section语义：nil、空串与纯空白均视为"无分组"，存为空串。
func NormalizeSection(section string) string {
	return strings.TrimSpace(section)
}
