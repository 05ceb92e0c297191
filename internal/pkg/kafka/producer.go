package kafka

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/model"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MediaEventPublisher 发布媒体变更事件
type MediaEventPublisher interface {
	Publish(ctx context.Context, ev model.MediaEvent) error
	Close() error
}

type saramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewMediaEventPublisher 以上传者名作为分区键，同一上传者的事件保持顺序
func NewMediaEventPublisher(cfg *config.Config) (MediaEventPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return newPublisher(producer, cfg.Kafka.MediaEventConsumer.Topic), nil
}

func newPublisher(producer sarama.SyncProducer, topic string) *saramaPublisher {
	return &saramaPublisher{producer: producer, topic: topic}
}

func (p *saramaPublisher) Publish(ctx context.Context, ev model.MediaEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal media event")
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.UploaderName),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return errors.Wrapf(err, "publish %s for %s/%s", ev.Type, ev.Kind, ev.ID)
	}
	log.DebugContext(ctx, "media event published", "type", ev.Type, "partition", partition, "offset", offset)
	return nil
}

func (p *saramaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher Kafka 未启用时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.MediaEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
