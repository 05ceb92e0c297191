package auth

import (
	"EventGallery/internal/model"
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrHostDisabled       = errors.New("host account disabled")
)

// Token 登录成功后下发给主持人的令牌
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     model.Session
}

// Provider 主持人身份来源，本地账号或 Firebase
type Provider interface {
	Name() string
	Login(ctx context.Context, email, password string) (*Token, error)
	// Authenticate 校验令牌并还原会话
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}
