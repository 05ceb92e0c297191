package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/metrics"
	"EventGallery/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeleteState 单次删除动作的状态
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteAwaitingFirstConfirm
	DeleteAwaitingSecondConfirm
	DeleteDeleting
	DeleteDone
	DeleteAborted
)

func (s DeleteState) String() string {
	switch s {
	case DeleteAwaitingFirstConfirm:
		return "awaiting_first_confirm"
	case DeleteAwaitingSecondConfirm:
		return "awaiting_second_confirm"
	case DeleteDeleting:
		return "deleting"
	case DeleteDone:
		return "done"
	case DeleteAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// Settled 是否已结束
func (s DeleteState) Settled() bool {
	return s == DeleteDone || s == DeleteAborted
}

var (
	ErrMediaNotLoaded   = errors.New("media is not in the loaded feed")
	ErrDeleteInProgress = errors.New("delete already in progress for this media")
	ErrAlreadyDeleted   = errors.New("media already deleted")
	ErrDeleteNotFound   = errors.New("delete action not found")
	ErrDeleteSettled    = errors.New("delete action already settled")
	ErrDeleteRejected   = errors.New("delete rejected by document store")
)

// DeleteAction 一次删除动作的快照
type DeleteAction struct {
	ID        string
	Key       model.MediaKey
	Uploader  string
	State     DeleteState
	Reason    string
	CreatedAt time.Time
	SettledAt time.Time
}

// feedEditor 删除协调器对共享窗口的访问
type feedEditor interface {
	lookup(key model.MediaKey) (*model.MediaItem, bool)
	removeMedia(key model.MediaKey) bool
	notify(n Notice)
}

// SoftDeleteCoordinator 两次确认后标记删除，从不删除存储中的文件
type SoftDeleteCoordinator struct {
	store   repository.MediaStore
	feed    feedEditor
	session model.Session
	now     func() time.Time

	mu      sync.Mutex
	actions map[string]*DeleteAction
	pending map[model.MediaKey]string
	done    map[model.MediaKey]struct{}
}

func newSoftDeleteCoordinator(store repository.MediaStore, feed feedEditor, session model.Session, now func() time.Time) *SoftDeleteCoordinator {
	return &SoftDeleteCoordinator{
		store:   store,
		feed:    feed,
		session: session,
		now:     now,
		actions: make(map[string]*DeleteAction),
		pending: make(map[model.MediaKey]string),
		done:    make(map[model.MediaKey]struct{}),
	}
}

// Request 发起删除，进入第一次确认
func (d *SoftDeleteCoordinator) Request(key model.MediaKey) (DeleteAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.done[key]; ok {
		return DeleteAction{}, ErrAlreadyDeleted
	}
	if _, ok := d.pending[key]; ok {
		return DeleteAction{}, ErrDeleteInProgress
	}
	item, ok := d.feed.lookup(key)
	if !ok {
		return DeleteAction{}, ErrMediaNotLoaded
	}

	action := &DeleteAction{
		ID:        uuid.NewString(),
		Key:       key,
		Uploader:  item.Uploader(),
		State:     DeleteAwaitingFirstConfirm,
		CreatedAt: d.now(),
	}
	d.actions[action.ID] = action
	d.pending[key] = action.ID
	return *action, nil
}

// Confirm 第一次确认进入第二次确认，第二次确认执行远程标记
func (d *SoftDeleteCoordinator) Confirm(ctx context.Context, actionID string) (DeleteAction, error) {
	d.mu.Lock()
	action, ok := d.actions[actionID]
	if !ok {
		d.mu.Unlock()
		return DeleteAction{}, ErrDeleteNotFound
	}
	switch action.State {
	case DeleteAwaitingFirstConfirm:
		action.State = DeleteAwaitingSecondConfirm
		snapshot := *action
		d.mu.Unlock()
		return snapshot, nil
	case DeleteAwaitingSecondConfirm:
		if _, already := d.done[action.Key]; already {
			d.mu.Unlock()
			return *action, ErrAlreadyDeleted
		}
		action.State = DeleteDeleting
	case DeleteDeleting:
		d.mu.Unlock()
		return *action, ErrDeleteInProgress
	default:
		snapshot := *action
		d.mu.Unlock()
		return snapshot, ErrDeleteSettled
	}
	key := action.Key
	d.mu.Unlock()

	now := d.now()
	fields := map[string]any{
		model.FieldIsDeleted: true,
		model.FieldDeletedAt: now,
	}
	if d.session.Email != "" {
		fields[model.FieldDeletedBy] = d.session.Email
	}
	// 界面上删除是即发即忘，请求断开也要让远程调用结束
	err := d.store.UpdateFields(context.WithoutCancel(ctx), key.Kind.Collection(), key.ID, fields)

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
	action.SettledAt = d.now()

	if err != nil {
		action.State = DeleteAborted
		action.Reason = err.Error()
		metrics.DeleteActions.WithLabelValues("rejected").Inc()
		log.WarnContext(ctx, "soft delete rejected", "media", key.String(), "err", err)
		d.feed.notify(Notice{Level: NoticeError, Message: "删除失败，请稍后重试", At: action.SettledAt})
		return *action, ErrDeleteRejected
	}

	d.done[key] = struct{}{}
	d.feed.removeMedia(key)
	action.State = DeleteDone
	metrics.DeleteActions.WithLabelValues("done").Inc()
	log.InfoContext(ctx, "soft delete done", "media", key.String(), "by", d.session.UserID)
	return *action, nil
}

// Decline 任一确认步骤被拒绝，不做任何修改
func (d *SoftDeleteCoordinator) Decline(actionID string) (DeleteAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	action, ok := d.actions[actionID]
	if !ok {
		return DeleteAction{}, ErrDeleteNotFound
	}
	switch action.State {
	case DeleteAwaitingFirstConfirm, DeleteAwaitingSecondConfirm:
		action.State = DeleteAborted
		action.Reason = "declined"
		action.SettledAt = d.now()
		delete(d.pending, action.Key)
		metrics.DeleteActions.WithLabelValues("declined").Inc()
		return *action, nil
	case DeleteDeleting:
		return *action, ErrDeleteInProgress
	default:
		return *action, ErrDeleteSettled
	}
}

// Action 查询动作
func (d *SoftDeleteCoordinator) Action(actionID string) (DeleteAction, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	action, ok := d.actions[actionID]
	if !ok {
		return DeleteAction{}, false
	}
	return *action, true
}

// Pending 删除入口被禁用的媒体
func (d *SoftDeleteCoordinator) Pending() map[model.MediaKey]struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[model.MediaKey]struct{}, len(d.pending))
	for key := range d.pending {
		out[key] = struct{}{}
	}
	return out
}
