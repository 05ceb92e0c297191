package gallery

import "context"

// ViewportLoader 滚动哨兵与全屏查看器两个触发源，共用控制器的在途标记
type ViewportLoader struct {
	ctrl *Controller
}

// SentinelVisible 哨兵元素进入视口
func (l *ViewportLoader) SentinelVisible(ctx context.Context) bool {
	l.ctrl.touch()
	return l.ctrl.LoadMore(ctx)
}

// ViewerAt 全屏查看器切换到 index，到达最后一条时追加
func (l *ViewportLoader) ViewerAt(ctx context.Context, index int) bool {
	l.ctrl.touch()
	if !l.ctrl.isLastLoaded(index) {
		return false
	}
	return l.ctrl.LoadMore(ctx)
}
