package job

import (
	"EventGallery/internal/pkg/consts"
	"EventGallery/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeGallery struct {
	service.GalleryService
	rebuilds   int
	rebuildErr error
	sweeps     int
}

func (g *fakeGallery) RebuildUploaderStats(context.Context) (int, error) {
	g.rebuilds++
	return 3, g.rebuildErr
}

func (g *fakeGallery) SweepIdleViews(context.Context) int {
	g.sweeps++
	return 0
}

type fakeLocker struct {
	held     bool
	lockErr  error
	key      string
	released []string
}

func (l *fakeLocker) TryLock(_ context.Context, key, _ string, _ time.Duration, _ int) (bool, error) {
	l.key = key
	if l.lockErr != nil {
		return false, l.lockErr
	}
	return !l.held, nil
}

func (l *fakeLocker) Unlock(_ context.Context, _ string, owner string) (bool, error) {
	l.released = append(l.released, owner)
	return true, nil
}

func TestUploaderRebuildJob(t *testing.T) {
	tests := []struct {
		name         string
		locker       *fakeLocker
		wantRebuilds int
		wantReleased int
	}{
		{"acquires and releases", &fakeLocker{}, 1, 1},
		{"held elsewhere", &fakeLocker{held: true}, 0, 0},
		{"lock error", &fakeLocker{lockErr: errors.New("redis down")}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeGallery{}
			NewUploaderRebuildJob(svc, tt.locker).Run()

			assert.Equal(t, tt.wantRebuilds, svc.rebuilds)
			assert.Equal(t, consts.UploaderRebuildLock, tt.locker.key)
			assert.Len(t, tt.locker.released, tt.wantReleased)
		})
	}
}

func TestUploaderRebuildJob_NoLocker(t *testing.T) {
	svc := &fakeGallery{rebuildErr: errors.New("scan failed")}
	NewUploaderRebuildJob(svc, nil).Run()
	assert.Equal(t, 1, svc.rebuilds)
}

func TestViewSweepJob(t *testing.T) {
	svc := &fakeGallery{}
	job := NewViewSweepJob(svc)
	job.Run()
	job.Run()
	assert.Equal(t, 2, svc.sweeps)
}
