package dto

import "time"

// MediaDTO 单条照片或视频
type MediaDTO struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	URL           string     `json:"url"`
	ThumbnailURL  string     `json:"thumbnail_url,omitempty"`
	ContentType   string     `json:"content_type,omitempty"`
	UploaderName  string     `json:"uploader_name"`
	CreatedAt     time.Time  `json:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	DeletedBy     string     `json:"deleted_by,omitempty"`
	DeletePending bool       `json:"delete_pending"`
}

// NoticeDTO 一次性提示
type NoticeDTO struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ViewDTO 相册视图快照
type ViewDTO struct {
	ViewID     string       `json:"view_id"`
	Items      []*MediaDTO  `json:"items"`
	Uploaders  []string     `json:"uploaders"`
	Filter     string       `json:"filter"`
	Exhausted  bool         `json:"exhausted"`
	Loading    bool         `json:"loading"`
	Generation uint64       `json:"generation"`
	Notices    []*NoticeDTO `json:"notices"`
}

// LoadResultDTO 触发加载的结果，Triggered 为 false 表示被守卫拦下
type LoadResultDTO struct {
	Triggered bool     `json:"triggered"`
	View      *ViewDTO `json:"view"`
}

// FeedPageDTO 无状态分页
type FeedPageDTO struct {
	Items      []*MediaDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// UploaderDTO 上传者及其可见媒体数
type UploaderDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
