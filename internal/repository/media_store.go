package repository

import (
	"EventGallery/internal/model"
	"context"
	"errors"
	"time"
)

var ErrMediaNotFound = errors.New("media not found")

type SortDirection int

const (
	SortDesc SortDirection = iota
	SortAsc
)

// Equal 等值过滤条件
type Equal struct {
	Field string
	Value any
}

// In 字段取值属于 Values 之一
type In struct {
	Field  string
	Values []any
}

// PageCursor 上一页最后一条文档的排序键
type PageCursor struct {
	At time.Time
	ID string
}

// MediaQuery 单个集合上的过滤、排序与游标分页
type MediaQuery struct {
	Filters    []Equal
	In         []In
	OrderBy    string
	Direction  SortDirection
	StartAfter *PageCursor
	Limit      int
}

// MediaStore 文档存储，照片与视频分属两个集合
type MediaStore interface {
	Query(ctx context.Context, collection string, q MediaQuery) ([]*model.MediaItem, error)
	UpdateFields(ctx context.Context, collection string, id string, fields map[string]any) error
	Insert(ctx context.Context, collection string, item *model.MediaItem) (string, error)
}

// CursorAt 以 item 在 orderBy 字段上的值生成游标
func CursorAt(item *model.MediaItem, orderBy string) *PageCursor {
	if item == nil {
		return nil
	}
	return &PageCursor{At: sortValue(item, orderBy), ID: item.ID}
}

func sortValue(item *model.MediaItem, field string) time.Time {
	if field == model.FieldDeletedAt {
		if item.DeletedAt == nil {
			return time.Time{}
		}
		return *item.DeletedAt
	}
	return item.CreatedAt
}
