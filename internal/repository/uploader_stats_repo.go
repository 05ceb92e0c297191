package repository

import (
	"EventGallery/internal/pkg/consts"
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UploaderCount 上传者及其可见媒体数
type UploaderCount struct {
	Name  string
	Count int64
}

// UploaderStatsRepo 全局上传者目录
type UploaderStatsRepo interface {
	Incr(ctx context.Context, name string, delta int64) error
	List(ctx context.Context, limit int64) ([]UploaderCount, error)
	Replace(ctx context.Context, counts map[string]int64) error
}

type uploaderStatsRepoImpl struct {
	rdb *redis.Client
}

func NewUploaderStatsRepo(rdb *redis.Client) UploaderStatsRepo {
	return &uploaderStatsRepoImpl{rdb: rdb}
}

func (s *uploaderStatsRepoImpl) Incr(ctx context.Context, name string, delta int64) error {
	pipe := s.rdb.TxPipeline()
	pipe.ZIncrBy(ctx, consts.GalleryUploadersKey, float64(delta), name)
	pipe.ZRemRangeByScore(ctx, consts.GalleryUploadersKey, "-inf", "0")
	_, err := pipe.Exec(ctx)
	return err
}

func (s *uploaderStatsRepoImpl) List(ctx context.Context, limit int64) ([]UploaderCount, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	zs, err := s.rdb.ZRevRangeWithScores(ctx, consts.GalleryUploadersKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]UploaderCount, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, UploaderCount{Name: name, Count: int64(z.Score)})
	}
	return out, nil
}

// Replace 写入临时键后原子替换
func (s *uploaderStatsRepoImpl) Replace(ctx context.Context, counts map[string]int64) error {
	tmpKey := consts.GalleryUploadersKey + ":rebuild:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if len(counts) == 0 {
		return s.rdb.Del(ctx, consts.GalleryUploadersKey).Err()
	}

	members := make([]redis.Z, 0, len(counts))
	for name, count := range counts {
		members = append(members, redis.Z{Score: float64(count), Member: name})
	}

	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, tmpKey, members...)
	pipe.Rename(ctx, tmpKey, consts.GalleryUploadersKey)
	_, err := pipe.Exec(ctx)
	return err
}
