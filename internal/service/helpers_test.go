package service

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

var hostSession = model.Session{UserID: "1", Email: "host@example.com", Provider: model.SessionProviderLocal}

func seed(t *testing.T, store repository.MediaStore, collection, prefix string, n int, at func(i int) time.Time, uploader func(i int) string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.Insert(context.Background(), collection, &model.MediaItem{
			ID:           fmt.Sprintf("%s%d", prefix, i),
			URL:          fmt.Sprintf("https://cdn.example.com/%s/%s%d", collection, prefix, i),
			UploaderName: uploader(i),
			CreatedAt:    at(i),
		})
		require.NoError(t, err)
	}
}

func everyMinute(i int) time.Time {
	return t0.Add(time.Duration(i) * time.Minute)
}

func name(n string) func(int) string {
	return func(int) string { return n }
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.MediaEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.MediaEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) recorded() []model.MediaEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.MediaEvent, len(p.events))
	copy(out, p.events)
	return out
}

type fakeStatsRepo struct {
	repository.UploaderStatsRepo
	counts   []repository.UploaderCount
	listErr  error
	replaced map[string]int64
}

func (r *fakeStatsRepo) List(context.Context, int64) ([]repository.UploaderCount, error) {
	return r.counts, r.listErr
}

func (r *fakeStatsRepo) Replace(_ context.Context, counts map[string]int64) error {
	r.replaced = counts
	return nil
}
