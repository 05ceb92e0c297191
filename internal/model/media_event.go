package model

import "time"

const (
	MediaEventUploaded = "media.uploaded"
	MediaEventDeleted  = "media.deleted"
)

// MediaEvent 媒体变更事件，发布到 Kafka
type MediaEvent struct {
	Type         string    `json:"type"`
	Kind         MediaKind `json:"kind"`
	ID           string    `json:"id"`
	UploaderName string    `json:"uploader_name"`
	OccurredAt   time.Time `json:"occurred_at"`
}
