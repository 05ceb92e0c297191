package handler

import (
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/pkg/util"
	"EventGallery/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// mustSession 路由已挂 AuthMiddleware，取不到说明路由配置有误
func mustSession(c *gin.Context) (model.Session, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Error(c, service.UnauthorizedError)
		return model.Session{}, false
	}
	return session, true
}

// bindAndValidate 绑定失败统一按参数错误返回
func bindAndValidate(c *gin.Context, obj any, bind func(any) error) bool {
	if err := bind(obj); err != nil {
		log.InfoContext(c.Request.Context(), "bind request failed", "path", c.FullPath(), "err", err)
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return false
	}
	if err := util.ValidateDTO(obj); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return false
	}
	return true
}
