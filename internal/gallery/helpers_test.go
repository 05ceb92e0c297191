package gallery

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

var host = model.Session{UserID: "host-1", Email: "host@example.com", Provider: model.SessionProviderLocal}

// seedPhotos 写入 p0..p{n-1}，p{n-1} 最新
func seedPhotos(t *testing.T, store repository.MediaStore, n int, uploader func(i int) string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.Insert(context.Background(), model.CollectionPhotos, &model.MediaItem{
			ID:           fmt.Sprintf("p%d", i),
			URL:          fmt.Sprintf("https://cdn.example.com/photos/p%d.jpg", i),
			UploaderName: uploader(i),
			CreatedAt:    t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

// seedVideos 写入 v0..v{n-1}，时间穿插在照片之间
func seedVideos(t *testing.T, store repository.MediaStore, n int, uploader func(i int) string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.Insert(context.Background(), model.CollectionVideos, &model.MediaItem{
			ID:           fmt.Sprintf("v%d", i),
			URL:          fmt.Sprintf("https://cdn.example.com/videos/v%d.mp4", i),
			UploaderName: uploader(i),
			CreatedAt:    t0.Add(time.Duration(i*10+5)*time.Minute + 30*time.Second),
		})
		require.NoError(t, err)
	}
}

func named(name string) func(int) string {
	return func(int) string { return name }
}

func keysOf(s Snapshot) []model.MediaKey {
	out := make([]model.MediaKey, len(s.Items))
	for i, v := range s.Items {
		out[i] = v.Item.Key()
	}
	return out
}

func countKind(s Snapshot, kind model.MediaKind) int {
	n := 0
	for _, v := range s.Items {
		if v.Item.Kind == kind {
			n++
		}
	}
	return n
}

func requireNewestFirst(t *testing.T, s Snapshot) {
	t.Helper()
	for i := 1; i < len(s.Items); i++ {
		require.False(t, s.Items[i].Item.CreatedAt.After(s.Items[i-1].Item.CreatedAt),
			"item %d (%s) is newer than item %d", i, s.Items[i].Item.ID, i-1)
	}
}

// flakyStore 可注入失败并记录调用
type flakyStore struct {
	repository.MediaStore

	mu           sync.Mutex
	queryErr     error
	updateErr    error
	updates      []string
	photoCursors []*repository.PageCursor
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MediaStore: repository.NewMemoryMediaStore()}
}

func (s *flakyStore) Query(ctx context.Context, collection string, q repository.MediaQuery) ([]*model.MediaItem, error) {
	s.mu.Lock()
	if collection == model.CollectionPhotos {
		s.photoCursors = append(s.photoCursors, q.StartAfter)
	}
	err := s.queryErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MediaStore.Query(ctx, collection, q)
}

func (s *flakyStore) UpdateFields(ctx context.Context, collection string, id string, fields map[string]any) error {
	s.mu.Lock()
	s.updates = append(s.updates, collection+"/"+id)
	err := s.updateErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MediaStore.UpdateFields(ctx, collection, id, fields)
}

func (s *flakyStore) setQueryErr(err error) {
	s.mu.Lock()
	s.queryErr = err
	s.mu.Unlock()
}

func (s *flakyStore) setUpdateErr(err error) {
	s.mu.Lock()
	s.updateErr = err
	s.mu.Unlock()
}

func (s *flakyStore) updateCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.updates...)
}

func (s *flakyStore) lastPhotoCursor() *repository.PageCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.photoCursors) == 0 {
		return nil
	}
	return s.photoCursors[len(s.photoCursors)-1]
}

func (s *flakyStore) photoQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photoCursors)
}

// blockingStore arm 之后目标集合的下一次查询先读出结果再阻塞，直到 release
type blockingStore struct {
	repository.MediaStore

	mu         sync.Mutex
	armed      bool
	collection string
	started    chan struct{}
	release    chan struct{}
}

func newBlockingStore(inner repository.MediaStore) *blockingStore {
	return &blockingStore{MediaStore: inner}
}

func (s *blockingStore) arm() {
	s.armCollection(model.CollectionPhotos)
}

func (s *blockingStore) armCollection(collection string) {
	s.mu.Lock()
	s.armed = true
	s.collection = collection
	s.started = make(chan struct{})
	s.release = make(chan struct{})
	s.mu.Unlock()
}

func (s *blockingStore) Query(ctx context.Context, collection string, q repository.MediaQuery) ([]*model.MediaItem, error) {
	s.mu.Lock()
	block := s.armed && collection == s.collection
	if block {
		s.armed = false
	}
	started, release := s.started, s.release
	s.mu.Unlock()

	items, err := s.MediaStore.Query(ctx, collection, q)
	if block {
		close(started)
		<-release
	}
	return items, err
}
