package firebase

import (
	"EventGallery/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	// App 全局 Firebase 应用
	App *fb.App
	// Firestore 媒体文档库
	Firestore *firestore.Client
	// Storage 媒体对象存储
	Storage *storage.Client
	// Auth 主持人身份校验
	Auth *auth.Client
)

// ClientOptions 配置了凭据文件时使用文件，否则走默认凭据
func ClientOptions() []option.ClientOption {
	credFile := strings.TrimSpace(config.Cfg.Firebase.CredentialsFile)
	if credFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credFile)}
}

// InitApp 初始化 Firebase 应用，后续客户端都从它派生
func InitApp(ctx context.Context) error {
	cfg := config.Cfg.Firebase
	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, ClientOptions()...)
	if err != nil {
		return fmt.Errorf("firebase app init failed (project=%s): %w", cfg.ProjectID, err)
	}
	App = app
	log.Info("Firebase app initialized", "project", cfg.ProjectID)
	return nil
}

func InitFirestore(ctx context.Context) error {
	if App == nil {
		return fmt.Errorf("firebase app is not initialized")
	}
	client, err := App.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore client init failed: %w", err)
	}
	Firestore = client
	log.Info("Firestore connected", "project", config.Cfg.Firebase.ProjectID)
	return nil
}

func InitStorage(ctx context.Context) error {
	client, err := storage.NewClient(ctx, ClientOptions()...)
	if err != nil {
		return fmt.Errorf("storage client init failed: %w", err)
	}
	Storage = client
	log.Info("GCS storage client initialized", "bucket", config.Cfg.GCS.Bucket)
	return nil
}

func InitAuth(ctx context.Context) error {
	if App == nil {
		return fmt.Errorf("firebase app is not initialized")
	}
	client, err := App.Auth(ctx)
	if err != nil {
		return fmt.Errorf("firebase auth init failed: %w", err)
	}
	Auth = client
	return nil
}

// Close 关闭已打开的客户端
func Close() {
	if Firestore != nil {
		if err := Firestore.Close(); err != nil {
			log.Warn("close firestore failed", "err", err)
		}
	}
	if Storage != nil {
		if err := Storage.Close(); err != nil {
			log.Warn("close storage failed", "err", err)
		}
	}
}
