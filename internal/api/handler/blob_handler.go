package handler

import (
	"EventGallery/internal/pkg/blob"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BlobHandler 本地开发时直接提供内存对象存储中的文件
type BlobHandler struct {
	store *blob.MemoryStore
}

func NewBlobHandler(store *blob.MemoryStore) *BlobHandler {
	return &BlobHandler{store: store}
}

func (s *BlobHandler) Get(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("object"), "/")
	contentType, data, ok := s.store.Object(name)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
