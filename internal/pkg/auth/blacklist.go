package auth

import (
	"EventGallery/internal/pkg/consts"
	"EventGallery/internal/pkg/redis"
	"context"
	"sync"
	"time"
)

// Blacklist 已注销令牌的签名
type Blacklist interface {
	Add(ctx context.Context, signature string, ttl time.Duration) error
	Contains(ctx context.Context, signature string) (bool, error)
}

type redisBlacklist struct{}

// NewRedisBlacklist 使用全局 Redis 客户端
func NewRedisBlacklist() Blacklist {
	return redisBlacklist{}
}

func (redisBlacklist) Add(ctx context.Context, signature string, ttl time.Duration) error {
	return redis.Mark(ctx, consts.TokenBlacklistKey+signature, ttl)
}

func (redisBlacklist) Contains(ctx context.Context, signature string) (bool, error) {
	return redis.Marked(ctx, consts.TokenBlacklistKey+signature)
}

// MemoryBlacklist 单实例部署或测试使用
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Add(_ context.Context, signature string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[signature] = b.now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, signature string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[signature]
	if !ok {
		return false, nil
	}
	if !b.now().Before(exp) {
		delete(b.entries, signature)
		return false, nil
	}
	return true, nil
}
