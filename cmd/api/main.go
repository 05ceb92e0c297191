package main

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/pkg/auth"
	"EventGallery/internal/pkg/database"
	"EventGallery/internal/pkg/firebase"
	"EventGallery/internal/pkg/logger"
	"EventGallery/internal/pkg/minio"
	"EventGallery/internal/pkg/mongo"
	"EventGallery/internal/pkg/redis"
	"EventGallery/internal/pkg/secrets"
	"EventGallery/internal/pkg/security"
	"EventGallery/internal/repository"
	"EventGallery/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	// Secret Manager
	if secrets.Required(cfg) {
		fetcher, closeFetcher, err := secrets.NewFetcher(bootCtx, firebase.ClientOptions()...)
		if err != nil {
			log.Error("Fatal error: failed to create secret manager client", "err", err)
			panic(err)
		}
		err = secrets.Apply(bootCtx, cfg, fetcher)
		_ = closeFetcher()
		if err != nil {
			log.Error("Fatal error: failed to load secrets", "err", err)
			panic(err)
		}
	}
	security.Configure(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Redis 连接，未配置时上传者目录直接扫描文档库
	if cfg.Redis.Addr != "" {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Error("Fatal error: failed to create redis connection", "err", err)
			panic(err)
		}
		defer func() { _ = redis.Close() }()
	}

	// Firebase
	if err := initFirebase(bootCtx, cfg); err != nil {
		log.Error("Fatal error: failed to initialize firebase", "err", err)
		panic(err)
	}
	defer firebase.Close()

	infra := &wire.Infra{}

	// Mongo 连接
	if cfg.Gallery.DocumentBackend == config.BackendMongo {
		db, err := mongo.InitMongo(bootCtx, cfg.Mongo)
		if err != nil {
			log.Error("Fatal error: failed to create mongo connection", "err", err)
			panic(err)
		}
		if err = repository.EnsureMediaIndexes(bootCtx, db); err != nil {
			log.Error("Fatal error: failed to create mongo indexes", "err", err)
			panic(err)
		}
		infra.Mongo = db
		defer func() { _ = mongo.Close(context.Background(), db) }()
	}

	// MinIO 连接
	if cfg.Gallery.BlobBackend == config.BackendMinIO {
		if err := minio.Init(bootCtx, cfg.MinIO); err != nil {
			log.Error("Fatal error: failed to initialize MinIO", "err", err)
			panic(err)
		}
	}

	// 主持人账号库
	if cfg.Auth.Provider == config.ProviderLocal {
		db, err := database.NewGormDB(bootCtx, cfg.DB)
		if err != nil {
			log.Error("Fatal error: failed to create database connection", "err", err)
			panic(err)
		}
		defer func() { _ = database.Close(db) }()
		if err = bootstrapHost(bootCtx, db, cfg); err != nil {
			log.Error("Fatal error: failed to prepare host accounts", "err", err)
			panic(err)
		}
		infra.DB = db
	}

	// 依赖注入
	app, err := wire.BuildApplication(infra, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}
	defer func() { _ = app.Publisher.Close() }()
	bootCancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 定时任务
	if err = app.CronMgr.Start(); err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		panic(err)
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Cron Jobs stopping...")
		app.CronMgr.Stop()
		return nil
	})

	// Kafka 消费者
	if app.KafkaManager != nil {
		log.Info("Kafka Consumers starting...")
		app.KafkaManager.Start(ctx, cfg)
		g.Go(func() error {
			<-ctx.Done()
			return app.KafkaManager.Close()
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	log.Info("App exited successfully.")
}

// initFirebase 只初始化配置用到的 Firebase 客户端
func initFirebase(ctx context.Context, cfg *config.Config) error {
	needFirestore := cfg.Gallery.DocumentBackend == config.BackendFirestore
	needStorage := cfg.Gallery.BlobBackend == config.BackendGCS
	needAuth := cfg.Auth.Provider == config.ProviderFirebase
	if !needFirestore && !needStorage && !needAuth {
		return nil
	}

	if needFirestore || needAuth {
		if err := firebase.InitApp(ctx); err != nil {
			return err
		}
	}
	if needFirestore {
		if err := firebase.InitFirestore(ctx); err != nil {
			return err
		}
	}
	if needStorage {
		if err := firebase.InitStorage(ctx); err != nil {
			return err
		}
	}
	if needAuth {
		if err := firebase.InitAuth(ctx); err != nil {
			return err
		}
	}
	return nil
}

// bootstrapHost 同步表结构并创建引导账号
func bootstrapHost(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	hostRepo := repository.NewHostRepo(db)
	if err := hostRepo.Migrate(ctx); err != nil {
		return err
	}
	return auth.NewLocalProvider(hostRepo, auth.NewMemoryBlacklist()).EnsureHost(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword)
}
