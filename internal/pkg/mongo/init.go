package mongo

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	connectTimeout  = 10 * time.Second
	selectTimeout   = 5 * time.Second
	maxPoolSize     = 50
	applicationName = "event-gallery"
)

// InitMongo 返回媒体库的 Database 引用，软删除要求多数派确认
func InitMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if cfg.URL == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo url and database are required")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetAppName(applicationName).
		SetServerSelectionTimeout(selectTimeout).
		SetMaxPoolSize(maxPoolSize).
		SetWriteConcern(writeconcern.Majority()).
		SetMonitor(logger.NewMongoMonitor())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.InfoContext(ctx, "media database connected", "db", cfg.Database)
	return client.Database(cfg.Database), nil
}

// Close 断开 Database 所属客户端
func Close(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
