package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(store repository.MediaStore) *Controller {
	return newController("view-1", host, store, 10, func() time.Time { return t0 })
}

func TestController_MountMergesFirstBatch(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	ctrl := newTestController(store)
	ctrl.Mount(context.Background())

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Items, 13)
	assert.Equal(t, 10, countKind(snap, model.MediaKindPhoto))
	assert.Equal(t, 3, countKind(snap, model.MediaKindVideo))
	assert.False(t, snap.Exhausted)
	assert.False(t, snap.Loading)
	assert.Equal(t, AllUploaders, snap.Filter)
	assert.Equal(t, []string{"ayse", "mehmet"}, snap.Uploaders)
	requireNewestFirst(t, snap)
}

func TestController_LoadMoreExtendsPrefix(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	before := keysOf(ctrl.Snapshot())

	require.True(t, ctrl.LoadMore(ctx))
	after := ctrl.Snapshot()

	assert.Len(t, after.Items, 23)
	assert.Equal(t, before, keysOf(after)[:len(before)])
	assert.Equal(t, 3, countKind(after, model.MediaKindVideo), "videos must not be duplicated")
	assert.Equal(t, "p14", after.Items[13].Item.ID)

	seen := make(map[model.MediaKey]bool)
	for _, key := range keysOf(after) {
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
	}
}

func TestController_Exhaustion(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	require.True(t, ctrl.LoadMore(ctx))
	require.True(t, ctrl.LoadMore(ctx))

	snap := ctrl.Snapshot()
	assert.True(t, snap.Exhausted)
	assert.Len(t, snap.Items, 28)

	assert.False(t, ctrl.LoadMore(ctx))
	assert.False(t, ctrl.Loader().SentinelVisible(ctx))
	assert.Len(t, ctrl.Snapshot().Items, 28)
}

func TestController_ShortFirstPageIsExhausted(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 5, named("ayse"))

	ctrl := newTestController(store)
	ctrl.Mount(context.Background())

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Items, 5)
	assert.True(t, snap.Exhausted)
}

func TestController_EmptyStore(t *testing.T) {
	ctrl := newTestController(repository.NewMemoryMediaStore())
	ctrl.Mount(context.Background())

	snap := ctrl.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Uploaders)
	assert.True(t, snap.Exhausted)
}

func TestController_AppendErrorKeepsCursor(t *testing.T) {
	store := newFlakyStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	before := ctrl.Snapshot()

	store.setQueryErr(errors.New("deadline exceeded"))
	require.True(t, ctrl.LoadMore(ctx))
	failedCursor := store.lastPhotoCursor()
	require.NotNil(t, failedCursor)
	assert.Equal(t, "p15", failedCursor.ID)

	during := ctrl.Snapshot()
	assert.Equal(t, keysOf(before), keysOf(during))
	assert.Equal(t, before.Exhausted, during.Exhausted)
	assert.False(t, during.Loading)
	assert.Empty(t, during.Notices, "fetch errors are logged, not surfaced")

	store.setQueryErr(nil)
	require.True(t, ctrl.LoadMore(ctx))
	assert.Equal(t, failedCursor, store.lastPhotoCursor(), "retry must reuse the same cursor")
	assert.Len(t, ctrl.Snapshot().Items, 23)
}

func TestController_FailedResetRetriesOnNextTrigger(t *testing.T) {
	store := newFlakyStore()
	seedPhotos(t, store, 12, named("ayse"))

	ctx := context.Background()
	ctrl := newTestController(store)
	store.setQueryErr(errors.New("unavailable"))
	ctrl.Mount(ctx)
	assert.Empty(t, ctrl.Snapshot().Items)
	assert.False(t, ctrl.Snapshot().Loading)

	store.setQueryErr(nil)
	require.True(t, ctrl.Loader().SentinelVisible(ctx))
	assert.Nil(t, store.lastPhotoCursor(), "retry is a fresh reset")
	assert.Len(t, ctrl.Snapshot().Items, 10)
}

func TestController_ResetWithFilter(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	alternate := func(i int) string {
		if i%2 == 0 {
			return "ayse"
		}
		return "mehmet"
	}
	seedPhotos(t, store, 25, alternate)
	seedVideos(t, store, 3, alternate)

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	require.True(t, ctrl.LoadMore(ctx))

	ctrl.Reset(ctx, "ayse")
	snap := ctrl.Snapshot()
	require.NotEmpty(t, snap.Items)
	for _, v := range snap.Items {
		assert.Equal(t, "ayse", v.Item.UploaderName)
	}
	assert.Equal(t, "ayse", snap.Filter)
	assert.Equal(t, []string{"ayse"}, snap.Uploaders)
	assert.Equal(t, uint64(2), snap.Generation)

	ctrl.Reset(ctx, "all")
	snap = ctrl.Snapshot()
	assert.Equal(t, []string{"ayse", "mehmet"}, snap.Uploaders)
	assert.Len(t, snap.Items, 13)
}

func TestController_UploadersFrozenAfterFirstBatch(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	// 旧照片来自 zeynep，只会在第二页出现
	seedPhotos(t, store, 20, func(i int) string {
		if i < 10 {
			return "zeynep"
		}
		return "ayse"
	})

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	require.True(t, ctrl.LoadMore(ctx))

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Items, 20)
	assert.Equal(t, []string{"ayse"}, snap.Uploaders)
}

func TestController_StaleAppendDiscarded(t *testing.T) {
	inner := repository.NewMemoryMediaStore()
	alternate := func(i int) string {
		if i%2 == 0 {
			return "ayse"
		}
		return "mehmet"
	}
	seedPhotos(t, inner, 25, alternate)
	store := newBlockingStore(inner)

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)

	store.arm()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.LoadMore(ctx)
	}()
	<-store.started

	assert.True(t, ctrl.Snapshot().Loading)
	ctrl.Reset(ctx, "ayse")
	close(store.release)
	wg.Wait()

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Items, 10)
	for _, v := range snap.Items {
		assert.Equal(t, "ayse", v.Item.UploaderName, "stale batch leaked into the new filter")
	}
	assert.False(t, snap.Loading)
}

func TestController_SingleFlightAcrossTriggers(t *testing.T) {
	inner := repository.NewMemoryMediaStore()
	seedPhotos(t, inner, 25, named("ayse"))
	store := newBlockingStore(inner)

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)

	store.arm()
	done := make(chan bool)
	go func() {
		done <- ctrl.Loader().SentinelVisible(ctx)
	}()
	<-store.started

	assert.False(t, ctrl.Loader().SentinelVisible(ctx))
	assert.False(t, ctrl.Loader().ViewerAt(ctx, 9))

	close(store.release)
	assert.True(t, <-done)
	assert.Len(t, ctrl.Snapshot().Items, 20)
}

func TestViewportLoader_ViewerAt(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)

	assert.False(t, ctrl.Loader().ViewerAt(ctx, 3))
	assert.Len(t, ctrl.Snapshot().Items, 10)

	assert.True(t, ctrl.Loader().ViewerAt(ctx, 9))
	assert.Len(t, ctrl.Snapshot().Items, 20)
}

func TestController_DrainClearsNotices(t *testing.T) {
	ctrl := newTestController(repository.NewMemoryMediaStore())
	ctrl.notify(Notice{Level: NoticeError, Message: "x", At: t0})

	assert.Len(t, ctrl.Snapshot().Notices, 1)
	assert.Len(t, ctrl.Drain().Notices, 1)
	assert.Empty(t, ctrl.Snapshot().Notices)
}

func TestController_RetriedResetIsSingleFlight(t *testing.T) {
	flaky := newFlakyStore()
	seedPhotos(t, flaky, 12, named("ayse"))
	store := newBlockingStore(flaky)

	ctx := context.Background()
	ctrl := newTestController(store)
	flaky.setQueryErr(errors.New("unavailable"))
	ctrl.Mount(ctx)
	flaky.setQueryErr(nil)
	queriesBefore := flaky.photoQueries()

	store.arm()
	done := make(chan bool)
	go func() {
		done <- ctrl.Loader().SentinelVisible(ctx)
	}()
	<-store.started

	assert.True(t, ctrl.Snapshot().Loading)
	assert.False(t, ctrl.Loader().SentinelVisible(ctx))
	assert.False(t, ctrl.LoadMore(ctx))

	close(store.release)
	assert.True(t, <-done)
	assert.Equal(t, queriesBefore+1, flaky.photoQueries())
	assert.Len(t, ctrl.Snapshot().Items, 10)
}

func TestController_UnknownUploaderFilter(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 4, func(i int) string {
		if i%2 == 0 {
			return ""
		}
		return "ayse"
	})

	ctx := context.Background()
	ctrl := newTestController(store)
	ctrl.Mount(ctx)
	require.Equal(t, []string{model.UnknownUploader, "ayse"}, ctrl.Snapshot().Uploaders)

	ctrl.Reset(ctx, model.UnknownUploader)
	snap := ctrl.Snapshot()
	require.Len(t, snap.Items, 2)
	for _, v := range snap.Items {
		assert.Equal(t, model.UnknownUploader, v.Item.Uploader())
	}
	assert.Equal(t, []string{"p2", "p0"}, []string{snap.Items[0].Item.ID, snap.Items[1].Item.ID})
}
