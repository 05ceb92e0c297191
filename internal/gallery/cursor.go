package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
)

// FeedCursor 照片集合的分页状态，视频不分页
type FeedCursor struct {
	pageSize  int
	last      *repository.PageCursor
	exhausted bool
}

func NewFeedCursor(pageSize int) *FeedCursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedCursor{pageSize: pageSize}
}

// Reset 清空游标与耗尽标记
func (c *FeedCursor) Reset() {
	c.last = nil
	c.exhausted = false
}

// Advance 以最近一页照片推进游标，空页时游标不动
func (c *FeedCursor) Advance(lastPage []*model.MediaItem) {
	if n := len(lastPage); n > 0 {
		c.last = repository.CursorAt(lastPage[n-1], model.FieldCreatedAt)
	}
	c.exhausted = len(lastPage) < c.pageSize
}

// Last 返回游标副本，nil 表示从头开始
func (c *FeedCursor) Last() *repository.PageCursor {
	if c.last == nil {
		return nil
	}
	cp := *c.last
	return &cp
}

func (c *FeedCursor) Exhausted() bool {
	return c.exhausted
}

func (c *FeedCursor) PageSize() int {
	return c.pageSize
}
