package database

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 主持人表访问量很小，连接池给保守默认值
const (
	defaultMaxIdle     = 2
	defaultMaxOpen     = 10
	defaultMaxLifetime = 30 * time.Minute
	idleTimeout        = 5 * time.Minute
)

// NewGormDB 打开主持人账号库
func NewGormDB(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               dsn,
		DefaultStringSize: 255,
	}), &gorm.Config{
		Logger:                 logger.NewGormLogger(),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(positiveOr(cfg.MaxIdle, defaultMaxIdle))
	sqlDB.SetMaxOpenConns(positiveOr(cfg.MaxOpen, defaultMaxOpen))
	lifetime := defaultMaxLifetime
	if cfg.MaxLifetime > 0 {
		lifetime = time.Duration(cfg.MaxLifetime) * time.Minute
	}
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(idleTimeout)

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	log.InfoContext(ctx, "host database connected")
	return db, nil
}

// normalizeDSN 主持人表的时间字段按 UTC 解析为 time.Time
func normalizeDSN(raw string) (string, error) {
	dsnCfg, err := gomysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC
	return dsnCfg.FormatDSN(), nil
}

// Close 释放底层连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
