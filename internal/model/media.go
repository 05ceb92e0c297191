package model

import (
	"strings"
	"time"
)

// MediaKind 媒体来源集合
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

const (
	CollectionPhotos = "photos"
	CollectionVideos = "videos"
)

// 文档字段名
const (
	FieldURL          = "url"
	FieldUploaderName = "uploaderName"
	FieldCreatedAt    = "createdAt"
	FieldIsDeleted    = "isDeleted"
	FieldDeletedAt    = "deletedAt"
	FieldDeletedBy    = "deletedBy"
)

// UnknownUploader 上传者缺失时的占位名
const UnknownUploader = "Unknown"

// Collection 返回该类型对应的集合名
func (k MediaKind) Collection() string {
	if k == MediaKindVideo {
		return CollectionVideos
	}
	return CollectionPhotos
}

func (k MediaKind) Valid() bool {
	return k == MediaKindPhoto || k == MediaKindVideo
}

// ParseMediaKind 解析 photo / video
func ParseMediaKind(s string) (MediaKind, bool) {
	k := MediaKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// MediaKey 媒体在两个集合中的唯一标识
type MediaKey struct {
	Kind MediaKind
	ID   string
}

func (k MediaKey) String() string {
	return k.Kind.Collection() + "/" + k.ID
}

// MediaItem 照片或视频记录
type MediaItem struct {
	ID           string     `firestore:"-" bson:"_id,omitempty" json:"id"`
	Kind         MediaKind  `firestore:"-" bson:"-" json:"kind"`
	URL          string     `firestore:"url" bson:"url" json:"url"`
	ThumbnailURL string     `firestore:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	ObjectPath   string     `firestore:"objectPath,omitempty" bson:"objectPath,omitempty" json:"objectPath,omitempty"`
	ContentType  string     `firestore:"contentType,omitempty" bson:"contentType,omitempty" json:"contentType,omitempty"`
	Size         int64      `firestore:"size,omitempty" bson:"size,omitempty" json:"size,omitempty"`
	UploaderName string     `firestore:"uploaderName" bson:"uploaderName" json:"uploaderName"`
	CreatedAt    time.Time  `firestore:"createdAt" bson:"createdAt" json:"createdAt"`
	IsDeleted    bool       `firestore:"isDeleted" bson:"isDeleted" json:"isDeleted"`
	DeletedAt    *time.Time `firestore:"deletedAt" bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy    string     `firestore:"deletedBy,omitempty" bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
}

// Uploader 返回上传者名，缺失时为占位名
func (m *MediaItem) Uploader() string {
	if name := strings.TrimSpace(m.UploaderName); name != "" {
		return name
	}
	return UnknownUploader
}

func (m *MediaItem) Key() MediaKey {
	return MediaKey{Kind: m.Kind, ID: m.ID}
}
