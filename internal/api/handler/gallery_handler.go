package handler

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/service"

	"github.com/gin-gonic/gin"
)

type GalleryHandler struct {
	gallerySvc service.GalleryService
}

func NewGalleryHandler(gallerySvc service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallerySvc: gallerySvc}
}

func (s *GalleryHandler) OpenView(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	view, err := s.gallerySvc.OpenView(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

func (s *GalleryHandler) GetView(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	view, err := s.gallerySvc.GetView(c.Request.Context(), session, c.Param("view_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

func (s *GalleryHandler) ChangeFilter(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req dto.ChangeFilterDTO
	if !bindAndValidate(c, &req, c.ShouldBindJSON) {
		return
	}
	view, err := s.gallerySvc.ChangeFilter(c.Request.Context(), session, c.Param("view_id"), req.Uploader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Sentinel 列表底部哨兵进入视口
func (s *GalleryHandler) Sentinel(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	res, err := s.gallerySvc.SentinelVisible(c.Request.Context(), session, c.Param("view_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Viewer 全屏查看器翻到某一条
func (s *GalleryHandler) Viewer(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req dto.ViewerIndexDTO
	if !bindAndValidate(c, &req, c.ShouldBindJSON) {
		return
	}
	res, err := s.gallerySvc.ViewerAt(c.Request.Context(), session, c.Param("view_id"), *req.Index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *GalleryHandler) CloseView(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.gallerySvc.CloseView(c.Request.Context(), session, c.Param("view_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *GalleryHandler) RequestDelete(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req dto.DeleteRequestDTO
	if !bindAndValidate(c, &req, c.ShouldBindJSON) {
		return
	}
	action, err := s.gallerySvc.RequestDelete(c.Request.Context(), session, c.Param("view_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, action)
}

func (s *GalleryHandler) ConfirmDelete(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	action, err := s.gallerySvc.ConfirmDelete(c.Request.Context(), session, c.Param("view_id"), c.Param("action_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, action)
}

func (s *GalleryHandler) DeclineDelete(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	action, err := s.gallerySvc.DeclineDelete(c.Request.Context(), session, c.Param("view_id"), c.Param("action_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, action)
}

func (s *GalleryHandler) Feed(c *gin.Context) {
	var query dto.FeedQueryDTO
	if !bindAndValidate(c, &query, c.ShouldBindQuery) {
		return
	}
	page, err := s.gallerySvc.ListFeedPage(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *GalleryHandler) Deleted(c *gin.Context) {
	var query dto.DeletedQueryDTO
	if !bindAndValidate(c, &query, c.ShouldBindQuery) {
		return
	}
	page, err := s.gallerySvc.ListDeleted(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *GalleryHandler) Uploaders(c *gin.Context) {
	uploaders, err := s.gallerySvc.ListUploaders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, uploaders)
}
