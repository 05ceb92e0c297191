package kafka

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// UploaderStatsHandler 根据媒体事件维护上传者计数
type UploaderStatsHandler struct {
	statsRepo repository.UploaderStatsRepo
	batch     *batchConsumer
}

func NewUploaderStatsHandler(statsRepo repository.UploaderStatsRepo) *UploaderStatsHandler {
	h := &UploaderStatsHandler{statsRepo: statsRepo}
	h.batch = newBatchConsumer(h.logic)
	return h
}

func (s *UploaderStatsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("uploader stats consumer setup")
	return nil
}

func (s *UploaderStatsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("uploader stats consumer cleanup")
	return nil
}

func (s *UploaderStatsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-media-events consume claim", "partition", claim.Partition())
	if err := s.batch.consume(session, claim); err != nil {
		log.Error("topic-media-events process batch error", "err", err)
		return err
	}
	return nil
}

func (s *UploaderStatsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, err := decodeMediaEvent(msg)
	if err != nil {
		// 坏消息重试也不会成功，跳过
		log.WarnContext(ctx, "skip media event", "err", err)
		return nil
	}

	var delta int64
	switch ev.Type {
	case model.MediaEventUploaded:
		delta = 1
	case model.MediaEventDeleted:
		delta = -1
	default:
		return nil
	}

	name := (&model.MediaItem{UploaderName: ev.UploaderName}).Uploader()
	if err = s.statsRepo.Incr(ctx, name, delta); err != nil {
		return errors.Wrapf(err, "update uploader stats for %s", name)
	}
	return nil
}

func decodeMediaEvent(msg *sarama.ConsumerMessage) (*model.MediaEvent, error) {
	var ev model.MediaEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return nil, errors.Wrapf(err, "unmarshal media event at offset %d", msg.Offset)
	}
	if ev.ID == "" || !ev.Kind.Valid() {
		return nil, errors.Errorf("malformed media event at offset %d", msg.Offset)
	}
	return &ev, nil
}
