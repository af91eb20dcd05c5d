package render

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ImageFilePrefix 下载图片的文件名前缀
const ImageFilePrefix = "seekcompass-ai-image-"

var (
	ErrInvalidDataURI = errors.New("invalid data URI")
	nowFunc           = time.Now
)

// DataURI 解码后的内联图片
type DataURI struct {
	MimeType string
	Data     []byte
}

// ParseDataURI 解析 data:<mime>;base64,<payload>
func ParseDataURI(uri string) (*DataURI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return &DataURI{MimeType: mime, Data: data}, nil
}

// extensionFor 按 MIME 类型选择扩展名，未知类型默认 png
func extensionFor(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	default:
		return "png"
	}
}

// ImageFileName seekcompass-ai-image-<unix毫秒>.<ext>
func ImageFileName(dataURI string, now time.Time) string {
	ext := "png"
	if rest, ok := strings.CutPrefix(dataURI, "data:"); ok {
		if mime, _, found := strings.Cut(rest, ";"); found {
			ext = extensionFor(mime)
		}
	}
	return ImageFilePrefix + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}

// DownloadImage 将图片写入 dir，返回文件路径
func DownloadImage(dataURI, dir string, now time.Time) (string, error) {
	img, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path := filepath.Join(dir, ImageFileName(dataURI, now))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
