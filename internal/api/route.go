package api

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/pkg/logger"
	"EventGallery/internal/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(config.Cfg.Server.AllowedOrigins))
	r.Use(middleware.CommonMiddleware(config.Cfg.Server.PublicBaseURL))
	logger.SetupGin(r, "/api/ping", config.Cfg.Metrics.Path)

	if config.Cfg.Metrics.Enable {
		r.GET(config.Cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	if group.BlobHandler != nil {
		r.GET("/blobs/*object", group.BlobHandler.Get)
	}

	RegisterRoutes(r.Group("/api"), group)
	return r
}

// RegisterRoutes 只挂业务路由，测试中直接使用
func RegisterRoutes(apiGroup *gin.RouterGroup, group *HandlersGroup) {
	auth := middleware.AuthMiddleware(group.AuthService)

	apiGroup.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": "pong",
			"data":    nil,
		})
	})

	// 访客入口，无需登录
	apiGroup.POST("/upload", group.UploadHandler.Upload)
	apiGroup.GET("/qrcode", group.QRCodeHandler.UploadQRCode)

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/login", group.AuthHandler.Login)
		authGroup.POST("/logout", auth, group.AuthHandler.Logout)
		authGroup.GET("/session", auth, group.AuthHandler.Session)
	}

	// 实时视图自行校验查询参数中的令牌
	apiGroup.GET("/gallery/views/:view_id/live", group.LiveHandler.Connect)

	galleryGroup := apiGroup.Group("/gallery")
	galleryGroup.Use(auth)
	{
		galleryGroup.GET("/feed", group.GalleryHandler.Feed)
		galleryGroup.GET("/deleted", group.GalleryHandler.Deleted)
		galleryGroup.GET("/uploaders", group.GalleryHandler.Uploaders)

		viewGroup := galleryGroup.Group("/views")
		{
			viewGroup.POST("", group.GalleryHandler.OpenView)
			viewGroup.GET("/:view_id", group.GalleryHandler.GetView)
			viewGroup.DELETE("/:view_id", group.GalleryHandler.CloseView)
			viewGroup.PUT("/:view_id/filter", group.GalleryHandler.ChangeFilter)
			viewGroup.POST("/:view_id/sentinel", group.GalleryHandler.Sentinel)
			viewGroup.POST("/:view_id/viewer", group.GalleryHandler.Viewer)
			viewGroup.POST("/:view_id/deletes", group.GalleryHandler.RequestDelete)
			viewGroup.POST("/:view_id/deletes/:action_id/confirm", group.GalleryHandler.ConfirmDelete)
			viewGroup.POST("/:view_id/deletes/:action_id/decline", group.GalleryHandler.DeclineDelete)
		}
	}
}
