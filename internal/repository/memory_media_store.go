package repository

import (
	"EventGallery/internal/model"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryMediaStore 进程内实现，用于本地运行与测试
type MemoryMediaStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*model.MediaItem
}

func NewMemoryMediaStore() *MemoryMediaStore {
	return &MemoryMediaStore{
		collections: make(map[string]map[string]*model.MediaItem),
	}
}

func (s *MemoryMediaStore) Query(ctx context.Context, collection string, q MediaQuery) ([]*model.MediaItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*model.MediaItem, 0)
	for _, item := range s.collections[collection] {
		if matchFilters(item, q.Filters) && matchIn(item, q.In) {
			matched = append(matched, item)
		}
	}

	less := func(a, b *model.MediaItem) bool {
		av, bv := sortValue(a, q.OrderBy), sortValue(b, q.OrderBy)
		if !av.Equal(bv) {
			return av.Before(bv)
		}
		return a.ID < b.ID
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Direction == SortAsc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	start := 0
	if q.StartAfter != nil {
		start = len(matched)
		for i, item := range matched {
			if afterCursor(item, q) {
				start = i
				break
			}
		}
	}
	matched = matched[start:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]*model.MediaItem, len(matched))
	for i, item := range matched {
		cp := *item
		out[i] = &cp
	}
	return out, nil
}

func (s *MemoryMediaStore) UpdateFields(ctx context.Context, collection string, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections[collection][id]
	if !ok {
		return ErrMediaNotFound
	}
	cp := *item
	for field, value := range fields {
		if err := setField(&cp, field, value); err != nil {
			return err
		}
	}
	s.collections[collection][id] = &cp
	return nil
}

func (s *MemoryMediaStore) Insert(ctx context.Context, collection string, item *model.MediaItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *item
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.Kind = ""
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*model.MediaItem)
	}
	if _, exists := s.collections[collection][cp.ID]; exists {
		return "", fmt.Errorf("document %s/%s already exists", collection, cp.ID)
	}
	s.collections[collection][cp.ID] = &cp
	return cp.ID, nil
}

// Get 读取单条记录
func (s *MemoryMediaStore) Get(collection, id string) (*model.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.collections[collection][id]
	if !ok {
		return nil, false
	}
	cp := *item
	return &cp, true
}

func matchFilters(item *model.MediaItem, filters []Equal) bool {
	for _, f := range filters {
		switch f.Field {
		case model.FieldIsDeleted:
			if v, ok := f.Value.(bool); !ok || item.IsDeleted != v {
				return false
			}
		case model.FieldUploaderName:
			if v, ok := f.Value.(string); !ok || item.UploaderName != v {
				return false
			}
		case model.FieldURL:
			if v, ok := f.Value.(string); !ok || item.URL != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchIn(item *model.MediaItem, filters []In) bool {
	for _, f := range filters {
		var actual any
		switch f.Field {
		case model.FieldUploaderName:
			actual = item.UploaderName
		case model.FieldURL:
			actual = item.URL
		default:
			return false
		}
		found := false
		for _, v := range f.Values {
			if v == actual {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func afterCursor(item *model.MediaItem, q MediaQuery) bool {
	v := sortValue(item, q.OrderBy)
	c := q.StartAfter
	if q.Direction == SortAsc {
		return v.After(c.At) || (v.Equal(c.At) && item.ID > c.ID)
	}
	return v.Before(c.At) || (v.Equal(c.At) && item.ID < c.ID)
}

func setField(item *model.MediaItem, field string, value any) error {
	switch field {
	case model.FieldIsDeleted:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %s expects bool", field)
		}
		item.IsDeleted = v
	case model.FieldDeletedAt:
		switch v := value.(type) {
		case time.Time:
			item.DeletedAt = &v
		case *time.Time:
			item.DeletedAt = v
		default:
			return fmt.Errorf("field %s expects time", field)
		}
	case model.FieldDeletedBy:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s expects string", field)
		}
		item.DeletedBy = v
	case model.FieldUploaderName:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s expects string", field)
		}
		item.UploaderName = v
	default:
		return fmt.Errorf("unsupported field %s", field)
	}
	return nil
}
