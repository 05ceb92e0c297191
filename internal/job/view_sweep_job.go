package job

import (
	"EventGallery/internal/pkg/logger"
	"EventGallery/internal/service"
	"context"

	"github.com/google/uuid"
)

// ViewSweepJob 回收长时间无交互的相册视图
type ViewSweepJob struct {
	gallerySvc service.GalleryService
}

func NewViewSweepJob(gallerySvc service.GalleryService) *ViewSweepJob {
	return &ViewSweepJob{gallerySvc: gallerySvc}
}

func (s *ViewSweepJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-sweep-"+uuid.NewString())
	s.gallerySvc.SweepIdleViews(ctx)
}
