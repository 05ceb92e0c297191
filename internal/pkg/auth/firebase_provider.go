package auth

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"
)

// TokenVerifier *auth.Client 的子集
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider 邮箱密码登录走 Identity Toolkit REST，令牌校验走 Admin SDK
type FirebaseProvider struct {
	httpClient *resty.Client
	apiKey     string
	verifier   TokenVerifier
}

func NewFirebaseProvider(endpoint, apiKey string, verifier TokenVerifier) *FirebaseProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTransport(logger.NewHTTPTransport()).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	return &FirebaseProvider{httpClient: client, apiKey: apiKey, verifier: verifier}
}

func (p *FirebaseProvider) Name() string {
	return model.SessionProviderFirebase
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken   string `json:"idToken"`
	Email     string `json:"email"`
	LocalID   string `json:"localId"`
	ExpiresIn string `json:"expiresIn"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) Login(ctx context.Context, email, password string) (*Token, error) {
	var result signInResponse
	var failure identityError
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(signInRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&failure).
		Post("/v1/accounts:signInWithPassword")
	if err != nil {
		return nil, fmt.Errorf("identity toolkit request failed: %w", err)
	}
	if resp.IsError() {
		return nil, mapIdentityError(failure.Error.Message, resp.StatusCode())
	}

	seconds, err := strconv.Atoi(result.ExpiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	exp := time.Now().Add(time.Duration(seconds) * time.Second)
	return &Token{
		AccessToken: result.IDToken,
		ExpiresAt:   exp,
		Session: model.Session{
			UserID:    result.LocalID,
			Email:     result.Email,
			Provider:  model.SessionProviderFirebase,
			ExpiresAt: exp,
		},
	}, nil
}

func mapIdentityError(message string, status int) error {
	code := message
	if i := strings.Index(code, " "); i >= 0 {
		code = code[:i]
	}
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "USER_DISABLED":
		return ErrHostDisabled
	default:
		return fmt.Errorf("identity toolkit error %d: %s", status, message)
	}
}

func (p *FirebaseProvider) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	verified, err := p.verifier.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		log.DebugContext(ctx, "firebase token rejected", "err", err)
		return nil, ErrInvalidToken
	}
	session := &model.Session{
		UserID:    verified.UID,
		Provider:  model.SessionProviderFirebase,
		ExpiresAt: time.Unix(verified.Expires, 0),
	}
	if email, ok := verified.Claims["email"].(string); ok {
		session.Email = email
	}
	return session, nil
}

// Logout 撤销该用户全部刷新令牌，已签发的 ID 令牌随之失效
func (p *FirebaseProvider) Logout(ctx context.Context, token string) error {
	verified, err := p.verifier.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}
	return p.verifier.RevokeRefreshTokens(ctx, verified.UID)
}
