package minio

import (
	"EventGallery/internal/api/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Store 以 MinIO 作为媒体对象存储
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore client 为空时使用全局客户端
func NewStore(client *minio.Client, bucket string) *Store {
	if client == nil {
		client = Client
	}
	if bucket == "" {
		bucket = MainBucket
	}
	return &Store{client: client, bucket: bucket}
}

// Put 上传文件到MinIO
func (s *Store) Put(ctx context.Context, objectName string, contentType string, r io.Reader, size int64) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PublicURL(uploadInfo.Key), nil
}

func (s *Store) PublicURL(objectName string) string {
	return GetPublicURL(s.bucket, objectName)
}

// GetPublicURL 获取文件的公共访问URL，优先使用外部地址
func GetPublicURL(bucket, objectName string) string {
	cfg := config.Cfg.MinIO
	endpoint := cfg.ExternalEndpoint
	useSSL := cfg.ExternalUseSSL
	if endpoint == "" {
		endpoint = cfg.InternalEndpoint
		useSSL = cfg.InternalUseSSL
	}

	protocol := "http"
	if useSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, strings.TrimRight(endpoint, "/"), bucket, strings.TrimLeft(objectName, "/"))
}
