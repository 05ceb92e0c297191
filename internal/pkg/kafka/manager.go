package kafka

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	mediaEventConsumer sarama.ConsumerGroup
	mediaEventHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, statsRepo repository.UploaderStatsRepo) (*ConsumerManager, error) {
	saramaCfg := newConsumerConfig(cfg.Kafka)

	mediaEventConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.MediaEventConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		mediaEventConsumer: mediaEventConsumer,
		mediaEventHandler:  NewUploaderStatsHandler(statsRepo),
	}, nil
}

// Start 启动所有消费者，ctx 结束时退出
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) {
	go func() {
		topic := cfg.Kafka.MediaEventConsumer.Topic
		log.Info("Media event consumer started", "topic", topic)
		for {
			if err := m.mediaEventConsumer.Consume(ctx, []string{topic}, m.mediaEventHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range m.mediaEventConsumer.Errors() {
			log.Error("media event consumer error", "err", err)
		}
	}()
}

func (m *ConsumerManager) Close() error {
	return m.mediaEventConsumer.Close()
}
