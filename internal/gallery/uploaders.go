package gallery

import (
	"EventGallery/internal/model"
	"sort"
)

// UploaderSet 当前窗口中出现过的上传者
type UploaderSet map[string]struct{}

// ComputeFromWindow 只在重置时调用，之后的追加不会改变下拉列表
func ComputeFromWindow(items []*model.MediaItem) UploaderSet {
	set := make(UploaderSet, len(items))
	for _, item := range items {
		set[item.Uploader()] = struct{}{}
	}
	return set
}

func (s UploaderSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted 返回排序后的名字，便于稳定输出
func (s UploaderSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
