package job

import (
	"EventGallery/internal/pkg/consts"
	"EventGallery/internal/pkg/logger"
	"EventGallery/internal/pkg/redis"
	"EventGallery/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const rebuildTimeout = 10 * time.Minute

// Locker 多实例部署时保证只有一个实例在重建
type Locker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration, attempts int) (bool, error)
	Unlock(ctx context.Context, key, owner string) (bool, error)
}

type redisLocker struct{}

func (redisLocker) TryLock(ctx context.Context, key, owner string, ttl time.Duration, attempts int) (bool, error) {
	return redis.TryLock(ctx, key, owner, ttl, attempts)
}

func (redisLocker) Unlock(ctx context.Context, key, owner string) (bool, error) {
	return redis.Unlock(ctx, key, owner)
}

// NewRedisLocker 使用全局 Redis 连接
func NewRedisLocker() Locker {
	return redisLocker{}
}

// UploaderRebuildJob 全量扫描文档存储，修正 Kafka 计数的漂移
type UploaderRebuildJob struct {
	gallerySvc service.GalleryService
	locker     Locker
}

func NewUploaderRebuildJob(gallerySvc service.GalleryService, locker Locker) *UploaderRebuildJob {
	return &UploaderRebuildJob{gallerySvc: gallerySvc, locker: locker}
}

func (s *UploaderRebuildJob) Run() {
	traceID := "job-uploaders-" + uuid.NewString()
	ctx, cancel := context.WithTimeout(logger.WithTraceID(context.Background(), traceID), rebuildTimeout)
	defer cancel()

	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, consts.UploaderRebuildLock, traceID, rebuildTimeout, 1)
		if err != nil {
			log.ErrorContext(ctx, "acquire uploader rebuild lock error", "err", err)
			return
		}
		if !ok {
			log.InfoContext(ctx, "uploader rebuild running elsewhere, skip")
			return
		}
		defer s.release(context.WithoutCancel(ctx), traceID)
	}

	start := time.Now()
	n, err := s.gallerySvc.RebuildUploaderStats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "rebuild uploader stats error", "err", err)
		return
	}
	log.InfoContext(ctx, "uploader stats rebuilt", "uploaders", n, "took", time.Since(start))
}

func (s *UploaderRebuildJob) release(ctx context.Context, owner string) {
	released, err := s.locker.Unlock(ctx, consts.UploaderRebuildLock, owner)
	if err != nil {
		log.ErrorContext(ctx, "release uploader rebuild lock error", "err", err)
		return
	}
	if !released {
		log.WarnContext(ctx, "uploader rebuild lock expired before release")
	}
}
