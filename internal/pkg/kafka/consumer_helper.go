package kafka

import (
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

const (
	defaultBatchSize     = 32
	defaultFlushInterval = time.Second
	defaultMaxAttempts   = 5
	defaultRetryBackoff  = 100 * time.Millisecond
	maxRetryBackoff      = 5 * time.Second
)

type handleFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// batchConsumer 攒批消费单个分区，批内顺序处理，整批完成后提交最后一条位点
type batchConsumer struct {
	size        int
	interval    time.Duration
	maxAttempts int
	backoff     time.Duration
	handle      handleFunc
}

func newBatchConsumer(handle handleFunc) *batchConsumer {
	return &batchConsumer{
		size:        defaultBatchSize,
		interval:    defaultFlushInterval,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultRetryBackoff,
		handle:      handle,
	}
}

func (b *batchConsumer) consume(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	batch := make([]*sarama.ConsumerMessage, 0, b.size)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			b.process(session, batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= b.size {
				flush()
				ticker.Reset(b.interval)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// process 会话结束时中途退出且不提交，重新分配后由新消费者重投
func (b *batchConsumer) process(session sarama.ConsumerGroupSession, batch []*sarama.ConsumerMessage) {
	ctx := session.Context()
	for _, msg := range batch {
		if !b.handleWithRetry(ctx, msg) {
			return
		}
	}
	session.MarkMessage(batch[len(batch)-1], "")
}

// handleWithRetry 超过最大次数后丢弃该消息，返回 false 表示会话已结束
func (b *batchConsumer) handleWithRetry(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	wait := b.backoff
	for attempt := 1; ; attempt++ {
		err := b.handle(ctx, msg)
		if err == nil {
			return true
		}
		if attempt >= b.maxAttempts {
			log.ErrorContext(ctx, "drop message after retries",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "attempts", attempt, "err", err)
			return true
		}
		log.WarnContext(ctx, "handle message failed, retrying",
			"topic", msg.Topic, "offset", msg.Offset, "attempt", attempt, "err", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait = min(wait*2, maxRetryBackoff)
	}
}
