package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const DefaultPublicBaseURL = "https://storage.googleapis.com"

// Store 公开可读的 GCS 存储桶
type Store struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewStore(client *storage.Client, bucket, publicBaseURL string) *Store {
	if strings.TrimSpace(publicBaseURL) == "" {
		publicBaseURL = DefaultPublicBaseURL
	}
	return &Store{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *Store) Put(ctx context.Context, objectName string, contentType string, r io.Reader, size int64) (string, error) {
	obj := strings.TrimSpace(objectName)
	if obj == "" {
		return "", errors.New("gcs: object name is empty")
	}
	w := s.client.Bucket(s.bucket).Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=31536000, immutable"
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}

	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", obj, err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", obj, err)
	}
	if size >= 0 && written != size {
		return "", fmt.Errorf("gcs: short write for %s: %d of %d bytes", obj, written, size)
	}
	return s.PublicURL(obj), nil
}

// PublicURL 逐段转义，保留 "/" 分隔符
func (s *Store) PublicURL(objectName string) string {
	parts := strings.Split(objectName, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, strings.Join(parts, "/"))
}
