package api

import (
	"EventGallery/internal/api/handler"
	"EventGallery/internal/service"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthService    service.AuthService
	AuthHandler    *handler.AuthHandler
	GalleryHandler *handler.GalleryHandler
	LiveHandler    *handler.LiveHandler
	UploadHandler  *handler.UploadHandler
	QRCodeHandler  *handler.QRCodeHandler
	// BlobHandler 仅在 blob_backend=memory 时存在
	BlobHandler *handler.BlobHandler
}
