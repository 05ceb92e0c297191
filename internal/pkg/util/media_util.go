package util

import (
	"EventGallery/internal/model"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// 嗅探无法识别的容器，按扩展名兜底
var extFallback = map[string]string{
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
}

var typeExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// SniffContentType 读取文件头判断真实类型，完成后把读取位置恢复到开头
func SniffContentType(r io.ReadSeeker, filename string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	contentType := http.DetectContentType(head[:n])
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if contentType == "application/octet-stream" {
		if fallback, ok := extFallback[strings.ToLower(path.Ext(filename))]; ok {
			return fallback, nil
		}
	}
	return contentType, nil
}

// MediaKindOf 按白名单把类型归为照片或视频
func MediaKindOf(contentType string, photoTypes, videoTypes []string) (model.MediaKind, error) {
	switch {
	case Contains(photoTypes, contentType):
		return model.MediaKindPhoto, nil
	case Contains(videoTypes, contentType):
		return model.MediaKindVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
}

// ObjectName 生成 <prefix>/<毫秒时间戳>-<uuid><ext>
func ObjectName(prefix string, contentType string, filename string, now time.Time) string {
	ext, ok := typeExt[contentType]
	if !ok {
		ext = strings.ToLower(path.Ext(filename))
	}
	return fmt.Sprintf("%s/%d-%s%s", strings.Trim(prefix, "/"), now.UnixMilli(), uuid.NewString(), ext)
}

// ThumbnailName photos/1-abc.png 的缩略图为 thumbs/1-abc.jpg
func ThumbnailName(objectName string) string {
	base := path.Base(objectName)
	return "thumbs/" + strings.TrimSuffix(base, path.Ext(base)) + ".jpg"
}

// MakeThumbnail 等比缩放到指定宽度并编码为 JPEG
func MakeThumbnail(r io.Reader, width int) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
