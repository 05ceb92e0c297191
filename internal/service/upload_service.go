package service

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/api/dto"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/blob"
	"EventGallery/internal/pkg/kafka"
	"EventGallery/internal/pkg/metrics"
	"EventGallery/internal/pkg/util"
	"EventGallery/internal/repository"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"mime/multipart"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type UploadService interface {
	Upload(ctx context.Context, uploaderName string, files []*multipart.FileHeader) (*dto.UploadResultDTO, error)
}

type UploadServiceImpl struct {
	cfg       config.UploadConfig
	blobs     blob.Store
	store     repository.MediaStore
	publisher kafka.MediaEventPublisher
	now       func() time.Time
}

func NewUploadService(cfg config.UploadConfig, blobs blob.Store, store repository.MediaStore, publisher kafka.MediaEventPublisher) UploadService {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &UploadServiceImpl{
		cfg:       cfg,
		blobs:     blobs,
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Upload 单个文件失败不影响其余文件，只有请求级参数错误才返回 error
func (s *UploadServiceImpl) Upload(ctx context.Context, uploaderName string, files []*multipart.FileHeader) (*dto.UploadResultDTO, error) {
	name := util.NormalizeUploaderName(uploaderName)
	if name == "" {
		return nil, ErrUploaderRequired
	}
	if s.cfg.MaxUploaderLength > 0 && util.RuneLen(name) > s.cfg.MaxUploaderLength {
		return nil, ErrUploaderTooLong
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return nil, ErrTooManyFiles
	}

	results := make([]*dto.UploadFileResultDTO, len(files))
	sem := semaphore.NewWeighted(s.cfg.Concurrency)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, fh := range files {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res := s.uploadOne(gctx, name, fh)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// 只有请求被取消时才会到这里
		return nil, err
	}

	out := &dto.UploadResultDTO{UploaderName: name, Files: results}
	for _, r := range results {
		if r.OK {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	log.InfoContext(ctx, "guest upload finished", "uploader", name, "succeeded", out.Succeeded, "failed", out.Failed)
	return out, nil
}

func (s *UploadServiceImpl) uploadOne(ctx context.Context, uploader string, fh *multipart.FileHeader) *dto.UploadFileResultDTO {
	res := &dto.UploadFileResultDTO{FileName: fh.Filename}
	item, err := s.storeFile(ctx, uploader, fh)
	if err != nil {
		res.Error = userFacing(err).Error()
		kind := "unknown"
		if item != nil {
			kind = string(item.Kind)
		}
		metrics.Uploads.WithLabelValues(kind, "error").Inc()
		log.WarnContext(ctx, "upload file failed", "file", fh.Filename, "size", fh.Size, "err", err)
		return res
	}

	res.OK = true
	res.Kind = string(item.Kind)
	res.ID = item.ID
	res.URL = item.URL
	metrics.Uploads.WithLabelValues(string(item.Kind), "ok").Inc()
	metrics.UploadBytes.Add(float64(item.Size))

	if err = s.publisher.Publish(ctx, model.MediaEvent{
		Type:         model.MediaEventUploaded,
		Kind:         item.Kind,
		ID:           item.ID,
		UploaderName: item.UploaderName,
		OccurredAt:   item.CreatedAt,
	}); err != nil {
		log.WarnContext(ctx, "publish media event failed", "type", model.MediaEventUploaded, "media", item.Key().String(), "err", err)
	}
	return res
}

// storeFile 出错时返回的 item 仅用于打点
func (s *UploadServiceImpl) storeFile(ctx context.Context, uploader string, fh *multipart.FileHeader) (*model.MediaItem, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	contentType, err := util.SniffContentType(f, fh.Filename)
	if err != nil {
		return nil, fmt.Errorf("sniff %s: %w", fh.Filename, err)
	}
	kind, err := util.MediaKindOf(contentType, s.cfg.PhotoTypes, s.cfg.VideoTypes)
	if err != nil {
		return nil, err
	}
	item := &model.MediaItem{Kind: kind, ContentType: contentType, Size: fh.Size, UploaderName: uploader}

	limit := s.cfg.MaxPhotoBytes
	if kind == model.MediaKindVideo {
		limit = s.cfg.MaxVideoBytes
	}
	if limit > 0 && fh.Size > limit {
		return item, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, fh.Size, limit)
	}

	now := s.now()
	item.ObjectPath = util.ObjectName(kind.Collection(), contentType, fh.Filename, now)
	events := blob.UploadWithProgress(ctx, s.blobs, item.ObjectPath, contentType, f, fh.Size)
	url, err := blob.Wait(events, func(ev blob.Event) {
		log.DebugContext(ctx, "upload progress", "object", item.ObjectPath, "percent", ev.Percent())
	})
	if err != nil {
		return item, fmt.Errorf("put %s: %w", item.ObjectPath, err)
	}
	item.URL = url

	if kind == model.MediaKindPhoto && s.cfg.ThumbnailWidth > 0 {
		item.ThumbnailURL = s.putThumbnail(ctx, f, item.ObjectPath)
	}

	item.CreatedAt = now
	item.IsDeleted = false
	id, err := s.store.Insert(ctx, kind.Collection(), item)
	if err != nil {
		return item, fmt.Errorf("insert %s: %w", item.ObjectPath, err)
	}
	item.ID = id
	return item, nil
}

// putThumbnail 缩略图失败只记录日志，原图照常入库
func (s *UploadServiceImpl) putThumbnail(ctx context.Context, f io.ReadSeeker, objectPath string) string {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		log.WarnContext(ctx, "rewind for thumbnail failed", "object", objectPath, "err", err)
		return ""
	}
	thumb, err := util.MakeThumbnail(f, s.cfg.ThumbnailWidth)
	if err != nil {
		log.WarnContext(ctx, "make thumbnail failed", "object", objectPath, "err", err)
		return ""
	}
	name := util.ThumbnailName(objectPath)
	url, err := s.blobs.Put(ctx, name, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb)))
	if err != nil {
		log.WarnContext(ctx, "put thumbnail failed", "object", name, "err", err)
		return ""
	}
	return url
}

func userFacing(err error) error {
	switch {
	case errors.Is(err, util.ErrUnsupportedMedia):
		return ErrFileNotSupported
	case errors.Is(err, ErrFileTooLarge):
		return ErrFileTooLarge
	default:
		return UnExpectedError
	}
}
