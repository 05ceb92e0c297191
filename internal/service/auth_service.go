package service

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/auth"
	"context"
	log "log/slog"
	"time"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	CurrentSession(ctx context.Context, session *model.Session) (*dto.SessionDTO, error)
}

type AuthServiceImpl struct {
	provider auth.Provider
	now      func() time.Time
}

func NewAuthService(provider auth.Provider) AuthService {
	return &AuthServiceImpl{provider: provider, now: time.Now}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error) {
	token, err := s.provider.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.InfoContext(ctx, "host login rejected", "provider", s.provider.Name(), "err", err)
		return nil, translate(err)
	}
	log.InfoContext(ctx, "host logged in", "provider", s.provider.Name(), "host", token.Session.UserID)
	return &dto.TokenDTO{Token: token.AccessToken, ExpiresAt: token.ExpiresAt}, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return UnauthorizedError
	}
	return translate(s.provider.Logout(ctx, token))
}

// Authenticate 令牌有效但会话已过期也视为未登录
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, UnauthorizedError
	}
	session, err := s.provider.Authenticate(ctx, token)
	if err != nil {
		return nil, translate(err)
	}
	if !session.Active(s.now()) {
		return nil, ErrSessionInvalid
	}
	return session, nil
}

func (s *AuthServiceImpl) CurrentSession(ctx context.Context, session *model.Session) (*dto.SessionDTO, error) {
	if session == nil || !session.Active(s.now()) {
		return nil, UnauthorizedError
	}
	return &dto.SessionDTO{
		UserID:    session.UserID,
		Email:     session.Email,
		Provider:  session.Provider,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
