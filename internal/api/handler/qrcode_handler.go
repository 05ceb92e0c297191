package handler

import (
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/pkg/util"
	"EventGallery/internal/service"
	log "log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QRCodeHandler struct{}

func NewQRCodeHandler() *QRCodeHandler {
	return &QRCodeHandler{}
}

// UploadQRCode 生成指向访客上传页的二维码
func (s *QRCodeHandler) UploadQRCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		size = n
	}

	target := middleware.BaseURL(c) + "/upload"
	png, err := util.QRCodePNG(target, size)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "encode qrcode failed", "target", target, "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}
