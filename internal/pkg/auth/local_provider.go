package auth

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/security"
	"EventGallery/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"
)

// LocalProvider 主持人账号保存在 MySQL，令牌为 HS256 JWT
type LocalProvider struct {
	hostRepo  repository.HostRepo
	blacklist Blacklist
}

func NewLocalProvider(hostRepo repository.HostRepo, blacklist Blacklist) *LocalProvider {
	return &LocalProvider{hostRepo: hostRepo, blacklist: blacklist}
}

func (p *LocalProvider) Name() string {
	return model.SessionProviderLocal
}

func (p *LocalProvider) Login(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)
	host, err := p.hostRepo.GetHostByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if host == nil {
		return nil, ErrInvalidCredentials
	}
	if err = security.CheckPasswordHash(password, host.Password); err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if host.IsDisabled {
		return nil, ErrHostDisabled
	}

	token, exp, err := security.GenerateToken(host.ID, host.Email)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: token,
		ExpiresAt:   exp,
		Session: model.Session{
			UserID:    strconv.FormatUint(host.ID, 10),
			Email:     host.Email,
			Provider:  model.SessionProviderLocal,
			ExpiresAt: exp,
		},
	}, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := p.blacklist.Contains(ctx, signature)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	claims, err := security.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	session := &model.Session{
		UserID:   strconv.FormatUint(claims.HostID, 10),
		Email:    claims.Email,
		Provider: model.SessionProviderLocal,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Logout 签名进入黑名单，保留到令牌自然过期
func (p *LocalProvider) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrInvalidToken
	}
	ttl := security.DefaultJWTExpirationTime
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return p.blacklist.Add(ctx, signature, ttl)
}

// EnsureHost 首次启动时创建引导账号，已存在则跳过
func (p *LocalProvider) EnsureHost(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := p.hostRepo.GetHostByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if err = p.hostRepo.CreateHost(ctx, &model.Host{Email: email, Password: hash}); err != nil {
		return fmt.Errorf("create bootstrap host: %w", err)
	}
	log.InfoContext(ctx, "bootstrap host created", "email", email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
