package kafka

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	counts map[string]int64
	err    error
}

func (f *fakeStatsRepo) Incr(_ context.Context, name string, delta int64) error {
	if f.err != nil {
		return f.err
	}
	f.counts[name] += delta
	return nil
}

func (f *fakeStatsRepo) List(context.Context, int64) ([]repository.UploaderCount, error) {
	return nil, nil
}

func (f *fakeStatsRepo) Replace(context.Context, map[string]int64) error { return nil }

func message(t *testing.T, ev model.MediaEvent) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: b}
}

func TestUploaderStatsHandler_Logic(t *testing.T) {
	repo := &fakeStatsRepo{counts: map[string]int64{}}
	h := NewUploaderStatsHandler(repo)
	ctx := context.Background()

	for _, ev := range []model.MediaEvent{
		{Type: model.MediaEventUploaded, Kind: model.MediaKindPhoto, ID: "p1", UploaderName: "ayse"},
		{Type: model.MediaEventUploaded, Kind: model.MediaKindVideo, ID: "v1", UploaderName: "ayse"},
		{Type: model.MediaEventUploaded, Kind: model.MediaKindPhoto, ID: "p2", UploaderName: ""},
		{Type: model.MediaEventDeleted, Kind: model.MediaKindPhoto, ID: "p1", UploaderName: "ayse"},
		{Type: "media.renamed", Kind: model.MediaKindPhoto, ID: "p1", UploaderName: "ayse"},
	} {
		require.NoError(t, h.logic(ctx, message(t, ev)))
	}

	assert.Equal(t, map[string]int64{"ayse": 1, "Unknown": 1}, repo.counts)
}

func TestUploaderStatsHandler_SkipsMalformed(t *testing.T) {
	repo := &fakeStatsRepo{counts: map[string]int64{}}
	h := NewUploaderStatsHandler(repo)

	assert.NoError(t, h.logic(context.Background(), &sarama.ConsumerMessage{Value: []byte("{not json")}))
	assert.NoError(t, h.logic(context.Background(), message(t, model.MediaEvent{Type: model.MediaEventUploaded, Kind: "gif", ID: "x"})))
	assert.Empty(t, repo.counts)
}

func TestUploaderStatsHandler_RepoErrorIsRetried(t *testing.T) {
	repo := &fakeStatsRepo{counts: map[string]int64{}, err: errors.New("redis down")}
	h := NewUploaderStatsHandler(repo)

	err := h.logic(context.Background(), message(t, model.MediaEvent{Type: model.MediaEventUploaded, Kind: model.MediaKindPhoto, ID: "p1", UploaderName: "ayse"}))
	assert.ErrorContains(t, err, "redis down")
}

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev model.MediaEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.ID != "p1" || ev.Type != model.MediaEventDeleted {
			return errors.New("unexpected event")
		}
		return nil
	})

	p := newPublisher(producer, "gallery.media.events")
	require.NoError(t, p.Publish(context.Background(), model.MediaEvent{
		Type: model.MediaEventDeleted, Kind: model.MediaKindPhoto, ID: "p1", UploaderName: "ayse", OccurredAt: time.Now(),
	}))
	require.NoError(t, p.Close())
}
