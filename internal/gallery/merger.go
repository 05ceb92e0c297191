package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const DefaultPageSize = 10

// AllUploaders 不按上传者过滤
const AllUploaders = "all"

// Batch 一次合并拉取的结果
type Batch struct {
	// Items 照片与视频合并后按 createdAt 倒序
	Items []*model.MediaItem
	// Photos 本次照片页，用于推进游标
	Photos []*model.MediaItem
}

// FeedMerger 同时查询照片与视频集合并合并为一批
type FeedMerger struct {
	store    repository.MediaStore
	pageSize int
}

func NewFeedMerger(store repository.MediaStore, pageSize int) *FeedMerger {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedMerger{store: store, pageSize: pageSize}
}

func (m *FeedMerger) PageSize() int {
	return m.pageSize
}

// FetchNextBatch 照片从 after 之后取一页，视频每次都取最新一页
func (m *FeedMerger) FetchNextBatch(ctx context.Context, filter string, after *repository.PageCursor) (*Batch, error) {
	var photos, videos []*model.MediaItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := m.store.Query(gctx, model.CollectionPhotos, m.query(filter, after))
		if err != nil {
			return fmt.Errorf("query photos: %w", err)
		}
		photos = page
		return nil
	})
	g.Go(func() error {
		page, err := m.store.Query(gctx, model.CollectionVideos, m.query(filter, nil))
		if err != nil {
			return fmt.Errorf("query videos: %w", err)
		}
		videos = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tagKind(photos, model.MediaKindPhoto)
	tagKind(videos, model.MediaKindVideo)

	items := make([]*model.MediaItem, 0, len(photos)+len(videos))
	items = append(items, photos...)
	items = append(items, videos...)
	SortNewestFirst(items)

	return &Batch{Items: items, Photos: photos}, nil
}

func (m *FeedMerger) query(filter string, after *repository.PageCursor) repository.MediaQuery {
	return FeedQuery(filter, after, m.pageSize)
}

// FeedQuery 未删除媒体按 createdAt 倒序，选中占位名时匹配未署名的记录
func FeedQuery(filter string, after *repository.PageCursor, limit int) repository.MediaQuery {
	q := repository.MediaQuery{
		Filters:    []repository.Equal{{Field: model.FieldIsDeleted, Value: false}},
		OrderBy:    model.FieldCreatedAt,
		Direction:  repository.SortDesc,
		StartAfter: after,
		Limit:      limit,
	}
	switch name := strings.TrimSpace(filter); {
	case IsAllUploaders(name):
	case name == model.UnknownUploader:
		q.In = []repository.In{{Field: model.FieldUploaderName, Values: []any{"", model.UnknownUploader}}}
	default:
		q.Filters = append(q.Filters, repository.Equal{Field: model.FieldUploaderName, Value: name})
	}
	return q
}

// SortNewestFirst 按 createdAt 倒序，相同时间保持到达顺序
func SortNewestFirst(items []*model.MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// IsAllUploaders 空串与 "all" 都表示不过滤
func IsAllUploaders(filter string) bool {
	f := strings.TrimSpace(filter)
	return f == "" || strings.EqualFold(f, AllUploaders)
}

func normalizeFilter(filter string) string {
	if IsAllUploaders(filter) {
		return AllUploaders
	}
	return strings.TrimSpace(filter)
}

func tagKind(items []*model.MediaItem, kind model.MediaKind) {
	for _, item := range items {
		item.Kind = kind
	}
}
