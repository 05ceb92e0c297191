package handler

import (
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 表单字段名，兼容 files 与 files[] 两种写法
var fileFields = []string{"files", "files[]"}

type UploadHandler struct {
	uploadSvc    service.UploadService
	maxBodyBytes int64
}

// NewUploadHandler maxBodyBytes 为整个请求体上限，<=0 不限制
func NewUploadHandler(uploadSvc service.UploadService, maxBodyBytes int64) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc, maxBodyBytes: maxBodyBytes}
}

// Upload 访客上传，无需登录
func (s *UploadHandler) Upload(c *gin.Context) {
	if s.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, service.ErrFileTooLarge)
			return
		}
		log.InfoContext(c.Request.Context(), "parse multipart failed", "err", err)
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var uploaderName string
	if values := form.Value["uploaderName"]; len(values) > 0 {
		uploaderName = values[0]
	}
	files := form.File[fileFields[0]]
	for _, field := range fileFields[1:] {
		files = append(files, form.File[field]...)
	}

	res, err := s.uploadSvc.Upload(c.Request.Context(), uploaderName, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
