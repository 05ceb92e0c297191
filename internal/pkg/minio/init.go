package minio

import (
	"EventGallery/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	Client     *minio.Client
	MainBucket string
)

// Init 服务端优先走内网地址，桶不存在时创建并开放匿名只读
func Init(ctx context.Context, cfg config.MinIOConfig) error {
	endpoint, secure := cfg.InternalEndpoint, cfg.InternalUseSSL
	if endpoint == "" {
		endpoint, secure = cfg.ExternalEndpoint, cfg.ExternalUseSSL
	}
	if endpoint == "" {
		return fmt.Errorf("minio endpoint is empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}
	if err = ensureBucket(ctx, client, cfg.MainBucket); err != nil {
		return err
	}

	Client = client
	MainBucket = cfg.MainBucket
	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		log.InfoContext(ctx, "媒体存储桶已创建", "bucket", bucket)
	}

	current, err := client.GetBucketPolicy(ctx, bucket)
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchBucketPolicy" {
		return fmt.Errorf("read bucket policy %s: %w", bucket, err)
	}
	if strings.Contains(current, "s3:GetObject") {
		return nil
	}

	doc, err := readOnlyPolicy(bucket)
	if err != nil {
		return err
	}
	if err = client.SetBucketPolicy(ctx, bucket, doc); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", bucket, err)
	}
	log.InfoContext(ctx, "媒体存储桶已开放匿名只读", "bucket", bucket)
	return nil
}

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

// readOnlyPolicy 访客页面直接引用对象地址，只开放 GetObject
func readOnlyPolicy(bucket string) (string, error) {
	doc := struct {
		Version   string            `json:"Version"`
		Statement []policyStatement `json:"Statement"`
	}{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{"arn:aws:s3:::" + bucket + "/*"},
		}},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal bucket policy: %w", err)
	}
	return string(b), nil
}
