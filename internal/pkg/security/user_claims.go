package security

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer                   = "event-gallery"
	DefaultJWTExpirationTime = time.Hour * 24
)

var (
	mu                sync.RWMutex
	jwtSecret         []byte
	jwtExpirationTime = DefaultJWTExpirationTime
)

// HostClaims 主持人会话 Token 中的业务信息
type HostClaims struct {
	HostID uint64 `json:"host_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Configure 设置签名密钥与有效期，启动时调用一次
func Configure(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
	if ttl <= 0 {
		ttl = DefaultJWTExpirationTime
	}
	jwtExpirationTime = ttl
}

func settings() ([]byte, time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret, jwtExpirationTime
}
