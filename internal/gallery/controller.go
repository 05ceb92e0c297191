package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/metrics"
	"EventGallery/internal/repository"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice 面向用户的短暂提示
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

// ItemView 窗口中的一条媒体及其删除入口状态
type ItemView struct {
	Item          model.MediaItem
	DeletePending bool
}

// Snapshot 控制器某一时刻的只读视图
type Snapshot struct {
	ViewID     string
	Items      []ItemView
	Uploaders  []string
	Filter     string
	Exhausted  bool
	Loading    bool
	Generation uint64
	Notices    []Notice
}

// Controller 单个相册视图的状态：窗口、游标、上传者列表与删除协调
type Controller struct {
	id      string
	session model.Session
	merger  *FeedMerger
	deletes *SoftDeleteCoordinator
	loader  *ViewportLoader
	now     func() time.Time

	mu         sync.Mutex
	cursor     *FeedCursor
	feed       feedWindow
	uploaders  UploaderSet
	filter     string
	generation uint64
	primed     bool
	resetting  bool
	inFlight   bool
	notices    []Notice
	lastActive time.Time
}

// NewController session 在构造时传入，控制器内部不做任何全局会话检查
func NewController(session model.Session, store repository.MediaStore, pageSize int) *Controller {
	return newController(uuid.NewString(), session, store, pageSize, time.Now)
}

func newController(id string, session model.Session, store repository.MediaStore, pageSize int, now func() time.Time) *Controller {
	merger := NewFeedMerger(store, pageSize)
	c := &Controller{
		id:         id,
		session:    session,
		merger:     merger,
		now:        now,
		cursor:     NewFeedCursor(merger.PageSize()),
		feed:       newFeedWindow(),
		uploaders:  UploaderSet{},
		filter:     AllUploaders,
		lastActive: now(),
	}
	c.deletes = newSoftDeleteCoordinator(store, c, session, now)
	c.loader = &ViewportLoader{ctrl: c}
	return c
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Session() model.Session {
	return c.session
}

func (c *Controller) Deletes() *SoftDeleteCoordinator {
	return c.deletes
}

func (c *Controller) Loader() *ViewportLoader {
	return c.loader
}

// Mount 首次打开视图，等价于以 all 重置
func (c *Controller) Mount(ctx context.Context) {
	c.Reset(ctx, AllUploaders)
}

// Reset 清空窗口、游标与耗尽标记，然后拉取第一批
func (c *Controller) Reset(ctx context.Context, filter string) {
	c.mu.Lock()
	gen, active := c.resetLocked(filter)
	c.mu.Unlock()

	c.fetchReset(ctx, gen, active)
}

// resetLocked 调用方持有 c.mu，进入重置状态并返回本次代号
func (c *Controller) resetLocked(filter string) (uint64, string) {
	c.generation++
	c.filter = normalizeFilter(filter)
	c.feed.clear()
	c.cursor.Reset()
	c.uploaders = UploaderSet{}
	c.primed = false
	c.resetting = true
	c.lastActive = c.now()
	return c.generation, c.filter
}

func (c *Controller) fetchReset(ctx context.Context, gen uint64, active string) {
	start := time.Now()
	batch, err := c.merger.FetchNextBatch(ctx, active, nil)
	metrics.FeedFetchLatency.WithLabelValues("reset").Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		metrics.FeedFetches.WithLabelValues("reset", "stale").Inc()
		log.InfoContext(ctx, "discard stale reset batch", "view", c.id, "generation", gen, "current", c.generation)
		return
	}
	c.resetting = false
	if err != nil {
		metrics.FeedFetches.WithLabelValues("reset", "error").Inc()
		log.WarnContext(ctx, "feed reset fetch failed", "view", c.id, "filter", active, "err", err)
		return
	}

	c.feed.replace(batch.Items)
	c.cursor.Advance(batch.Photos)
	c.uploaders = ComputeFromWindow(c.feed.items)
	c.primed = true
	metrics.FeedFetches.WithLabelValues("reset", "ok").Inc()
}

// LoadMore 追加下一批；返回是否真正发起了请求
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	c.lastActive = c.now()
	if !c.primed && !c.resetting {
		// 上一次重置失败，下一次触发重新走重置
		gen, active := c.resetLocked(c.filter)
		c.mu.Unlock()
		c.fetchReset(ctx, gen, active)
		return true
	}
	if c.resetting || c.inFlight || c.cursor.Exhausted() {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	gen := c.generation
	filter := c.filter
	after := c.cursor.Last()
	c.mu.Unlock()

	defer c.releaseInFlight()

	start := time.Now()
	batch, err := c.merger.FetchNextBatch(ctx, filter, after)
	metrics.FeedFetchLatency.WithLabelValues("append").Observe(time.Since(start).Seconds())

	c.applyAppend(ctx, gen, batch, err)
	return true
}

func (c *Controller) releaseInFlight() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) applyAppend(ctx context.Context, gen uint64, batch *Batch, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		metrics.FeedFetches.WithLabelValues("append", "stale").Inc()
		log.InfoContext(ctx, "discard stale append batch", "view", c.id, "generation", gen, "current", c.generation)
		return
	}
	if err != nil {
		// 游标不动，下次触发重试同一页
		metrics.FeedFetches.WithLabelValues("append", "error").Inc()
		log.WarnContext(ctx, "feed append fetch failed", "view", c.id, "filter", c.filter, "err", err)
		return
	}

	added := c.feed.append(batch.Items)
	c.cursor.Advance(batch.Photos)
	metrics.FeedFetches.WithLabelValues("append", "ok").Inc()
	log.DebugContext(ctx, "feed appended", "view", c.id, "added", added, "exhausted", c.cursor.Exhausted())
}

// isLastLoaded 查看器索引是否到达已加载的最后一条
func (c *Controller) isLastLoaded(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return index >= c.feed.len()-1
}

// Snapshot 不消费提示
func (c *Controller) Snapshot() Snapshot {
	return c.snapshot(false)
}

// Drain 返回快照并清空已展示的提示
func (c *Controller) Drain() Snapshot {
	return c.snapshot(true)
}

func (c *Controller) snapshot(drain bool) Snapshot {
	pending := c.deletes.Pending()

	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.feed.snapshot()
	views := make([]ItemView, len(items))
	for i, item := range items {
		_, locked := pending[item.Key()]
		views[i] = ItemView{Item: item, DeletePending: locked}
	}

	notices := make([]Notice, len(c.notices))
	copy(notices, c.notices)
	if drain {
		c.notices = nil
	}

	return Snapshot{
		ViewID:     c.id,
		Items:      views,
		Uploaders:  c.uploaders.Sorted(),
		Filter:     c.filter,
		Exhausted:  c.cursor.Exhausted(),
		Loading:    c.resetting || c.inFlight,
		Generation: c.generation,
		Notices:    notices,
	}
}

// IdleSince 最近一次交互时间
func (c *Controller) IdleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastActive = c.now()
	c.mu.Unlock()
}

func (c *Controller) lookup(key model.MediaKey) (*model.MediaItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.feed.find(key)
	if item == nil {
		return nil, false
	}
	cp := *item
	return &cp, true
}

func (c *Controller) removeMedia(key model.MediaKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed.remove(key)
}

func (c *Controller) notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}
