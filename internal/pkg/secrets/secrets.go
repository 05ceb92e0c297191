package secrets

import (
	"EventGallery/internal/api/config"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Fetcher 读取一个密钥的明文
type Fetcher interface {
	Access(ctx context.Context, name string) (string, error)
}

type smFetcher struct {
	sm *secretmanager.Client
}

// NewFetcher 基于 Secret Manager，调用方负责 Close
func NewFetcher(ctx context.Context, opts ...option.ClientOption) (Fetcher, func() error, error) {
	sm, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("secretmanager.NewClient failed: %w", err)
	}
	return &smFetcher{sm: sm}, sm.Close, nil
}

func (f *smFetcher) Access(ctx context.Context, name string) (string, error) {
	resp, err := f.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("AccessSecretVersion failed (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// ResourceName 短名补全为 projects/<p>/secrets/<name>/versions/latest
func ResourceName(projectID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "projects/") {
		if !strings.Contains(name, "/versions/") {
			name += "/versions/latest"
		}
		return name, nil
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return "", errors.New("projectID is empty")
	}
	return "projects/" + projectID + "/secrets/" + name + "/versions/latest", nil
}

// Required 是否配置了需要从 Secret Manager 读取的项
func Required(cfg *config.Config) bool {
	return cfg.Auth.JWTSecretName != "" || cfg.Firebase.APIKeySecretName != ""
}

// Apply 用 Secret Manager 中的值覆盖配置里的明文项
func Apply(ctx context.Context, cfg *config.Config, f Fetcher) error {
	targets := []struct {
		name string
		dst  *string
	}{
		{cfg.Auth.JWTSecretName, &cfg.Auth.JWTSecret},
		{cfg.Firebase.APIKeySecretName, &cfg.Firebase.APIKey},
	}
	for _, t := range targets {
		if t.name == "" {
			continue
		}
		resource, err := ResourceName(cfg.Firebase.ProjectID, t.name)
		if err != nil {
			return err
		}
		value, err := f.Access(ctx, resource)
		if err != nil {
			return err
		}
		if value == "" {
			return fmt.Errorf("secret %s is empty", resource)
		}
		*t.dst = value
		log.Info("secret loaded", "name", resource)
	}
	return nil
}
