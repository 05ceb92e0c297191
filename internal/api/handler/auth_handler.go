package handler

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (s *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginDTO
	if !bindAndValidate(c, &req, c.ShouldBindJSON) {
		return
	}
	token, err := s.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *AuthHandler) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)
	if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *AuthHandler) Session(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	out, err := s.authSvc.CurrentSession(c.Request.Context(), &session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}
