package gallery

import "EventGallery/internal/model"

// feedWindow 已加载的媒体窗口，调用方负责加锁
type feedWindow struct {
	items []*model.MediaItem
	keys  map[model.MediaKey]struct{}
	// removed 已软删除的标识，晚到的批次不得再带回
	removed map[model.MediaKey]struct{}
}

func newFeedWindow() feedWindow {
	return feedWindow{
		keys:    make(map[model.MediaKey]struct{}),
		removed: make(map[model.MediaKey]struct{}),
	}
}

// clear 清空窗口，保留 removed
func (w *feedWindow) clear() {
	w.items = nil
	w.keys = make(map[model.MediaKey]struct{})
}

// replace 用新批次整体替换窗口
func (w *feedWindow) replace(items []*model.MediaItem) {
	w.clear()
	w.append(items)
}

// append 追加到尾部，按 (kind, id) 去重并跳过已删除项，返回新增条数
func (w *feedWindow) append(items []*model.MediaItem) int {
	added := 0
	for _, item := range items {
		key := item.Key()
		if _, ok := w.keys[key]; ok {
			continue
		}
		if _, ok := w.removed[key]; ok {
			continue
		}
		w.keys[key] = struct{}{}
		w.items = append(w.items, item)
		added++
	}
	return added
}

// remove 按标识移除并记入 removed，其余元素相对顺序不变
func (w *feedWindow) remove(key model.MediaKey) bool {
	w.removed[key] = struct{}{}
	if _, ok := w.keys[key]; !ok {
		return false
	}
	delete(w.keys, key)
	for i, item := range w.items {
		if item.Key() == key {
			w.items = append(w.items[:i:i], w.items[i+1:]...)
			return true
		}
	}
	return false
}

func (w *feedWindow) contains(key model.MediaKey) bool {
	_, ok := w.keys[key]
	return ok
}

func (w *feedWindow) find(key model.MediaKey) *model.MediaItem {
	if !w.contains(key) {
		return nil
	}
	for _, item := range w.items {
		if item.Key() == key {
			return item
		}
	}
	return nil
}

func (w *feedWindow) len() int {
	return len(w.items)
}

// snapshot 拷贝出值，避免外部持有内部指针
func (w *feedWindow) snapshot() []model.MediaItem {
	out := make([]model.MediaItem, len(w.items))
	for i, item := range w.items {
		out[i] = *item
	}
	return out
}
