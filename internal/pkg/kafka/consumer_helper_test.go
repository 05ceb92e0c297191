package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx context.Context

	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func claimOf(offsets ...int64) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(offsets))
	for _, off := range offsets {
		ch <- &sarama.ConsumerMessage{Topic: "gallery.media.events", Offset: off}
	}
	close(ch)
	return &fakeClaim{ch: ch}
}

func fastBatch(size int, handle handleFunc) *batchConsumer {
	b := newBatchConsumer(handle)
	b.size = size
	b.backoff = time.Millisecond
	b.maxAttempts = 3
	return b
}

func TestBatchConsumer_MarksLastOfEachBatch(t *testing.T) {
	var handled []int64
	b := fastBatch(2, func(_ context.Context, msg *sarama.ConsumerMessage) error {
		handled = append(handled, msg.Offset)
		return nil
	})
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, b.consume(session, claimOf(10, 11, 12)))
	assert.Equal(t, []int64{10, 11, 12}, handled)
	assert.Equal(t, []int64{11, 12}, session.marked)
}

func TestBatchConsumer_RetriesThenSucceeds(t *testing.T) {
	failures := map[int64]int{5: 2}
	calls := 0
	b := fastBatch(8, func(_ context.Context, msg *sarama.ConsumerMessage) error {
		calls++
		if failures[msg.Offset] > 0 {
			failures[msg.Offset]--
			return errors.New("redis down")
		}
		return nil
	})
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, b.consume(session, claimOf(4, 5)))
	assert.Equal(t, 4, calls)
	assert.Equal(t, []int64{5}, session.marked)
}

func TestBatchConsumer_DropsAfterMaxAttempts(t *testing.T) {
	calls := map[int64]int{}
	b := fastBatch(8, func(_ context.Context, msg *sarama.ConsumerMessage) error {
		calls[msg.Offset]++
		if msg.Offset == 1 {
			return errors.New("poison")
		}
		return nil
	})
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, b.consume(session, claimOf(1, 2)))
	assert.Equal(t, 3, calls[1])
	assert.Equal(t, 1, calls[2])
	assert.Equal(t, []int64{2}, session.marked)
}

func TestBatchConsumer_StopsWithoutMarkWhenSessionEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := fastBatch(8, func(context.Context, *sarama.ConsumerMessage) error {
		cancel()
		return errors.New("rebalancing")
	})
	b.backoff = time.Minute
	session := &fakeSession{ctx: ctx}

	b.process(session, []*sarama.ConsumerMessage{{Offset: 1}, {Offset: 2}})
	assert.Empty(t, session.marked)
}
