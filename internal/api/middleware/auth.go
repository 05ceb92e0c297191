package middleware

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/consts"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/service"
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

type sessionCtxKey struct{}

// AuthMiddleware 通过已配置的身份源校验令牌，并把会话注入 Context
func AuthMiddleware(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		session, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) || errors.Is(err, service.UnauthorizedError) {
				response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}

		c.Set(consts.SessionKey, *session)
		c.Set(consts.UserIDKey, session.UserID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey{}, *session))

		c.Next()
	}
}

// BearerToken 取出 Authorization 头中的令牌
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// SessionFrom 读取 AuthMiddleware 注入的会话
func SessionFrom(c *gin.Context) (model.Session, bool) {
	v, ok := c.Get(consts.SessionKey)
	if !ok {
		return model.Session{}, false
	}
	session, ok := v.(model.Session)
	return session, ok
}

// SessionFromContext 在 service 等拿不到 gin.Context 的地方使用
func SessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(model.Session)
	return session, ok
}
