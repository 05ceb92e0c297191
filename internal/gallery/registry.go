package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/metrics"
	"EventGallery/internal/repository"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrViewNotFound  = errors.New("gallery view not found")
	ErrViewForbidden = errors.New("gallery view belongs to another session")
)

// Registry 持有所有打开的相册视图
type Registry struct {
	store    repository.MediaStore
	pageSize int
	idleTTL  time.Duration
	now      func() time.Time

	mu    sync.Mutex
	views map[string]*Controller
}

func NewRegistry(store repository.MediaStore, pageSize int, idleTTL time.Duration) *Registry {
	return &Registry{
		store:    store,
		pageSize: pageSize,
		idleTTL:  idleTTL,
		now:      time.Now,
		views:    make(map[string]*Controller),
	}
}

// Open 为会话创建新视图，调用方负责 Mount
func (r *Registry) Open(session model.Session) *Controller {
	ctrl := newController(uuid.NewString(), session, r.store, r.pageSize, r.now)

	r.mu.Lock()
	r.views[ctrl.ID()] = ctrl
	metrics.OpenViews.Set(float64(len(r.views)))
	r.mu.Unlock()
	return ctrl
}

// Get 只有打开视图的会话才能访问
func (r *Registry) Get(viewID string, session model.Session) (*Controller, error) {
	r.mu.Lock()
	ctrl, ok := r.views[viewID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrViewNotFound
	}
	if ctrl.Session().UserID != session.UserID {
		return nil, ErrViewForbidden
	}
	return ctrl, nil
}

func (r *Registry) Close(viewID string, session model.Session) error {
	if _, err := r.Get(viewID, session); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.views, viewID)
	metrics.OpenViews.Set(float64(len(r.views)))
	r.mu.Unlock()
	return nil
}

// Sweep 移除空闲超时的视图，返回移除数量
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	deadline := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, ctrl := range r.views {
		if ctrl.IdleSince().Before(deadline) {
			delete(r.views, id)
			removed++
		}
	}
	metrics.OpenViews.Set(float64(len(r.views)))
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
