package service

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/gallery"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/kafka"
	"EventGallery/internal/pkg/util"
	"EventGallery/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

// 重建统计时单页扫描的文档数
const rebuildScanPageSize = 500

type GalleryService interface {
	OpenView(ctx context.Context, session model.Session) (*dto.ViewDTO, error)
	GetView(ctx context.Context, session model.Session, viewID string) (*dto.ViewDTO, error)
	ChangeFilter(ctx context.Context, session model.Session, viewID string, uploader string) (*dto.ViewDTO, error)
	SentinelVisible(ctx context.Context, session model.Session, viewID string) (*dto.LoadResultDTO, error)
	ViewerAt(ctx context.Context, session model.Session, viewID string, index int) (*dto.LoadResultDTO, error)
	CloseView(ctx context.Context, session model.Session, viewID string) error
	RequestDelete(ctx context.Context, session model.Session, viewID string, req *dto.DeleteRequestDTO) (*dto.DeleteActionDTO, error)
	ConfirmDelete(ctx context.Context, session model.Session, viewID string, actionID string) (*dto.DeleteActionDTO, error)
	DeclineDelete(ctx context.Context, session model.Session, viewID string, actionID string) (*dto.DeleteActionDTO, error)
	ListFeedPage(ctx context.Context, query *dto.FeedQueryDTO) (*dto.FeedPageDTO, error)
	ListDeleted(ctx context.Context, query *dto.DeletedQueryDTO) (*dto.FeedPageDTO, error)
	ListUploaders(ctx context.Context) ([]*dto.UploaderDTO, error)
	RebuildUploaderStats(ctx context.Context) (int, error)
	SweepIdleViews(ctx context.Context) int
}

type GalleryServiceImpl struct {
	registry  *gallery.Registry
	store     repository.MediaStore
	statsRepo repository.UploaderStatsRepo
	publisher kafka.MediaEventPublisher
	pageSize  int
}

// NewGalleryService statsRepo 可为空，此时上传者目录直接扫描文档存储
func NewGalleryService(registry *gallery.Registry, store repository.MediaStore, statsRepo repository.UploaderStatsRepo,
	publisher kafka.MediaEventPublisher, pageSize int) GalleryService {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	if pageSize <= 0 {
		pageSize = gallery.DefaultPageSize
	}
	return &GalleryServiceImpl{
		registry:  registry,
		store:     store,
		statsRepo: statsRepo,
		publisher: publisher,
		pageSize:  pageSize,
	}
}

func (s *GalleryServiceImpl) OpenView(ctx context.Context, session model.Session) (*dto.ViewDTO, error) {
	ctrl := s.registry.Open(session)
	ctrl.Mount(ctx)
	log.InfoContext(ctx, "gallery view opened", "view", ctrl.ID(), "host", session.UserID)
	return toViewDTO(ctrl.Drain()), nil
}

func (s *GalleryServiceImpl) GetView(ctx context.Context, session model.Session, viewID string) (*dto.ViewDTO, error) {
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	return toViewDTO(ctrl.Drain()), nil
}

func (s *GalleryServiceImpl) ChangeFilter(ctx context.Context, session model.Session, viewID string, uploader string) (*dto.ViewDTO, error) {
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	ctrl.Reset(ctx, uploader)
	return toViewDTO(ctrl.Drain()), nil
}

func (s *GalleryServiceImpl) SentinelVisible(ctx context.Context, session model.Session, viewID string) (*dto.LoadResultDTO, error) {
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	triggered := ctrl.Loader().SentinelVisible(ctx)
	return &dto.LoadResultDTO{Triggered: triggered, View: toViewDTO(ctrl.Drain())}, nil
}

func (s *GalleryServiceImpl) ViewerAt(ctx context.Context, session model.Session, viewID string, index int) (*dto.LoadResultDTO, error) {
	if index < 0 {
		return nil, ErrParamInvalid
	}
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	triggered := ctrl.Loader().ViewerAt(ctx, index)
	return &dto.LoadResultDTO{Triggered: triggered, View: toViewDTO(ctrl.Drain())}, nil
}

func (s *GalleryServiceImpl) CloseView(ctx context.Context, session model.Session, viewID string) error {
	if err := s.registry.Close(viewID, session); err != nil {
		return translate(err)
	}
	log.InfoContext(ctx, "gallery view closed", "view", viewID)
	return nil
}

func (s *GalleryServiceImpl) RequestDelete(ctx context.Context, session model.Session, viewID string, req *dto.DeleteRequestDTO) (*dto.DeleteActionDTO, error) {
	kind, ok := model.ParseMediaKind(req.Kind)
	if !ok || strings.TrimSpace(req.ID) == "" {
		return nil, ErrParamInvalid
	}
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	action, err := ctrl.Deletes().Request(model.MediaKey{Kind: kind, ID: req.ID})
	if err != nil {
		return nil, translate(err)
	}
	return toDeleteActionDTO(action, nil), nil
}

// ConfirmDelete 第二次确认成功后发布 media.deleted
func (s *GalleryServiceImpl) ConfirmDelete(ctx context.Context, session model.Session, viewID string, actionID string) (*dto.DeleteActionDTO, error) {
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	action, err := ctrl.Deletes().Confirm(ctx, actionID)
	if err != nil {
		return nil, translate(err)
	}
	if action.State == gallery.DeleteDone {
		s.publish(ctx, model.MediaEvent{
			Type:         model.MediaEventDeleted,
			Kind:         action.Key.Kind,
			ID:           action.Key.ID,
			UploaderName: action.Uploader,
			OccurredAt:   action.SettledAt,
		})
		view := toViewDTO(ctrl.Snapshot())
		return toDeleteActionDTO(action, view), nil
	}
	return toDeleteActionDTO(action, nil), nil
}

func (s *GalleryServiceImpl) DeclineDelete(ctx context.Context, session model.Session, viewID string, actionID string) (*dto.DeleteActionDTO, error) {
	ctrl, err := s.registry.Get(viewID, session)
	if err != nil {
		return nil, translate(err)
	}
	action, err := ctrl.Deletes().Decline(actionID)
	if err != nil {
		return nil, translate(err)
	}
	return toDeleteActionDTO(action, nil), nil
}

// ListFeedPage 无状态分页，视频只出现在第一页
func (s *GalleryServiceImpl) ListFeedPage(ctx context.Context, query *dto.FeedQueryDTO) (*dto.FeedPageDTO, error) {
	at, id, ok, err := util.DecodePageCursor(query.Cursor)
	if err != nil {
		return nil, translate(err)
	}

	var items, photos []*model.MediaItem
	if !ok {
		batch, err := gallery.NewFeedMerger(s.store, s.pageSize).FetchNextBatch(ctx, query.Uploader, nil)
		if err != nil {
			return nil, err
		}
		items, photos = batch.Items, batch.Photos
	} else {
		photos, err = s.store.Query(ctx, model.CollectionPhotos, s.feedQuery(query.Uploader, &repository.PageCursor{At: at, ID: id}))
		if err != nil {
			return nil, fmt.Errorf("query photos: %w", err)
		}
		for _, p := range photos {
			p.Kind = model.MediaKindPhoto
		}
		items = photos
	}

	page := &dto.FeedPageDTO{Items: toMediaDTOs(items, nil), HasMore: len(photos) == s.pageSize}
	if page.HasMore {
		last := photos[len(photos)-1]
		page.NextCursor = util.EncodePageCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (s *GalleryServiceImpl) feedQuery(uploader string, after *repository.PageCursor) repository.MediaQuery {
	return gallery.FeedQuery(uploader, after, s.pageSize)
}

// ListDeleted 已删除归档，按 deletedAt 倒序，kind 为空时合并两个集合
func (s *GalleryServiceImpl) ListDeleted(ctx context.Context, query *dto.DeletedQueryDTO) (*dto.FeedPageDTO, error) {
	at, id, ok, err := util.DecodePageCursor(query.Cursor)
	if err != nil {
		return nil, translate(err)
	}
	var after *repository.PageCursor
	if ok {
		after = &repository.PageCursor{At: at, ID: id}
	}

	kinds := []model.MediaKind{model.MediaKindPhoto, model.MediaKindVideo}
	if query.Kind != "" {
		kind, valid := model.ParseMediaKind(query.Kind)
		if !valid {
			return nil, ErrParamInvalid
		}
		kinds = []model.MediaKind{kind}
	}

	q := repository.MediaQuery{
		Filters:    []repository.Equal{{Field: model.FieldIsDeleted, Value: true}},
		OrderBy:    model.FieldDeletedAt,
		Direction:  repository.SortDesc,
		StartAfter: after,
		Limit:      s.pageSize,
	}
	var merged []*model.MediaItem
	full := false
	for _, kind := range kinds {
		page, err := s.store.Query(ctx, kind.Collection(), q)
		if err != nil {
			return nil, fmt.Errorf("query deleted %s: %w", kind.Collection(), err)
		}
		for _, item := range page {
			item.Kind = kind
		}
		full = full || len(page) == s.pageSize
		merged = append(merged, page...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := deletedAt(merged[i]), deletedAt(merged[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return merged[i].ID > merged[j].ID
	})
	cut := len(merged) > s.pageSize
	if cut {
		merged = merged[:s.pageSize]
	}

	page := &dto.FeedPageDTO{Items: toMediaDTOs(merged, nil), HasMore: full || cut}
	if page.HasMore && len(merged) > 0 {
		last := merged[len(merged)-1]
		page.NextCursor = util.EncodePageCursor(deletedAt(last), last.ID)
	}
	return page, nil
}

func deletedAt(item *model.MediaItem) time.Time {
	if item.DeletedAt == nil {
		return time.Time{}
	}
	return *item.DeletedAt
}

// ListUploaders 全局上传者目录，与视图内冻结的下拉列表无关
func (s *GalleryServiceImpl) ListUploaders(ctx context.Context) ([]*dto.UploaderDTO, error) {
	if s.statsRepo != nil {
		counts, err := s.statsRepo.List(ctx, 0)
		if err == nil {
			out := make([]*dto.UploaderDTO, 0, len(counts))
			for _, c := range counts {
				out = append(out, &dto.UploaderDTO{Name: c.Name, Count: c.Count})
			}
			return out, nil
		}
		log.WarnContext(ctx, "uploader stats unavailable, scanning store", "err", err)
	}

	counts, err := s.countUploaders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UploaderDTO, 0, len(counts))
	for name, count := range counts {
		out = append(out, &dto.UploaderDTO{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// RebuildUploaderStats 全量扫描后替换 Redis 中的计数，返回上传者数量
func (s *GalleryServiceImpl) RebuildUploaderStats(ctx context.Context) (int, error) {
	if s.statsRepo == nil {
		return 0, nil
	}
	counts, err := s.countUploaders(ctx)
	if err != nil {
		return 0, err
	}
	if err = s.statsRepo.Replace(ctx, counts); err != nil {
		return 0, fmt.Errorf("replace uploader stats: %w", err)
	}
	return len(counts), nil
}

func (s *GalleryServiceImpl) countUploaders(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, collection := range []string{model.CollectionPhotos, model.CollectionVideos} {
		var after *repository.PageCursor
		for {
			page, err := s.store.Query(ctx, collection, repository.MediaQuery{
				Filters:    []repository.Equal{{Field: model.FieldIsDeleted, Value: false}},
				OrderBy:    model.FieldCreatedAt,
				Direction:  repository.SortDesc,
				StartAfter: after,
				Limit:      rebuildScanPageSize,
			})
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", collection, err)
			}
			for _, item := range page {
				counts[item.Uploader()]++
			}
			if len(page) < rebuildScanPageSize {
				break
			}
			after = repository.CursorAt(page[len(page)-1], model.FieldCreatedAt)
		}
	}
	return counts, nil
}

func (s *GalleryServiceImpl) SweepIdleViews(ctx context.Context) int {
	removed := s.registry.Sweep()
	if removed > 0 {
		log.InfoContext(ctx, "idle gallery views swept", "removed", removed, "open", s.registry.Len())
	}
	return removed
}

// publish 事件发布失败不影响主流程，统计由定时重建兜底
func (s *GalleryServiceImpl) publish(ctx context.Context, ev model.MediaEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.WarnContext(ctx, "publish media event failed", "type", ev.Type, "media", ev.Kind.Collection()+"/"+ev.ID, "err", err)
	}
}

func toViewDTO(snap gallery.Snapshot) *dto.ViewDTO {
	items := make([]*dto.MediaDTO, 0, len(snap.Items))
	for i := range snap.Items {
		m := toMediaDTO(&snap.Items[i].Item)
		m.DeletePending = snap.Items[i].DeletePending
		items = append(items, m)
	}
	notices := make([]*dto.NoticeDTO, 0, len(snap.Notices))
	for _, n := range snap.Notices {
		notices = append(notices, &dto.NoticeDTO{Level: string(n.Level), Message: n.Message, At: n.At})
	}
	return &dto.ViewDTO{
		ViewID:     snap.ViewID,
		Items:      items,
		Uploaders:  snap.Uploaders,
		Filter:     snap.Filter,
		Exhausted:  snap.Exhausted,
		Loading:    snap.Loading,
		Generation: snap.Generation,
		Notices:    notices,
	}
}

func toMediaDTOs(items []*model.MediaItem, pending map[model.MediaKey]struct{}) []*dto.MediaDTO {
	out := make([]*dto.MediaDTO, 0, len(items))
	for _, item := range items {
		m := toMediaDTO(item)
		_, m.DeletePending = pending[item.Key()]
		out = append(out, m)
	}
	return out
}

func toMediaDTO(item *model.MediaItem) *dto.MediaDTO {
	m := &dto.MediaDTO{}
	if err := copier.Copy(m, item); err != nil {
		log.Error("copy media item", "media", item.Key().String(), "err", err)
	}
	m.Kind = string(item.Kind)
	m.UploaderName = item.Uploader()
	return m
}

func toDeleteActionDTO(action gallery.DeleteAction, view *dto.ViewDTO) *dto.DeleteActionDTO {
	out := &dto.DeleteActionDTO{
		ActionID:  action.ID,
		Kind:      string(action.Key.Kind),
		MediaID:   action.Key.ID,
		Uploader:  action.Uploader,
		State:     action.State.String(),
		Reason:    action.Reason,
		CreatedAt: action.CreatedAt,
		View:      view,
	}
	if !action.SettledAt.IsZero() {
		settled := action.SettledAt
		out.SettledAt = &settled
	}
	return out
}
