package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockRetryInterval = 200 * time.Millisecond

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
	return redis.call('del', KEYS[1])
end
return 0`)

// Mark 写入带过期时间的标记键
func Mark(ctx context.Context, key string, ttl time.Duration) error {
	return Rdb.Set(ctx, key, 1, ttl).Err()
}

func Marked(ctx context.Context, key string) (bool, error) {
	n, err := Rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TryLock 以 owner 为值抢占锁，最多尝试 attempts 次，attempts 为 -1 时直到 ctx 结束
func TryLock(ctx context.Context, key, owner string, ttl time.Duration, attempts int) (bool, error) {
	for i := 0; attempts == -1 || i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(lockRetryInterval):
			}
		}
		ok, err := Rdb.SetNX(ctx, key, owner, ttl).Result()
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// Unlock 返回 false 表示锁已过期或被他人持有
func Unlock(ctx context.Context, key, owner string) (bool, error) {
	n, err := releaseScript.Run(ctx, Rdb, []string{key}, owner).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetRdbClient 未初始化时返回 nil
func GetRdbClient() *redis.Client {
	return Rdb
}
