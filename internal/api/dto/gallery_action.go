package dto

import "time"

// ChangeFilterDTO 切换上传者筛选，空或 all 表示全部
type ChangeFilterDTO struct {
	Uploader string `json:"uploader" validate:"max=64"`
}

// ViewerIndexDTO 全屏查看器当前位置
type ViewerIndexDTO struct {
	Index *int `json:"index" binding:"required" validate:"required,min=0"`
}

// DeleteRequestDTO 对已加载的媒体发起删除
type DeleteRequestDTO struct {
	Kind string `json:"kind" binding:"required" validate:"required,oneof=photo video"`
	ID   string `json:"id" binding:"required" validate:"required,max=128"`
}

// DeleteActionDTO 删除动作状态
type DeleteActionDTO struct {
	ActionID  string     `json:"action_id"`
	Kind      string     `json:"kind"`
	MediaID   string     `json:"media_id"`
	Uploader  string     `json:"uploader"`
	State     string     `json:"state"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
	View      *ViewDTO   `json:"view,omitempty"`
}

// FeedQueryDTO 无状态分页参数
type FeedQueryDTO struct {
	Uploader string `form:"uploader" validate:"max=64"`
	Cursor   string `form:"cursor" validate:"max=512"`
}

// DeletedQueryDTO 已删除列表参数
type DeletedQueryDTO struct {
	Kind   string `form:"kind" validate:"omitempty,oneof=photo video"`
	Cursor string `form:"cursor" validate:"max=512"`
}

// LiveCommandDTO 实时视图连接的上行指令，action 为 sentinel 或 viewer
type LiveCommandDTO struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// LiveFrameDTO 实时视图连接的下行帧，type 为 view 或 error
type LiveFrameDTO struct {
	Type    string   `json:"type"`
	View    *ViewDTO `json:"view,omitempty"`
	Code    int      `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
}
