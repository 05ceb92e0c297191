package gallery

import (
	"EventGallery/internal/model"
	"EventGallery/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedMerger_FirstBatch(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	m := NewFeedMerger(store, 10)
	batch, err := m.FetchNextBatch(context.Background(), AllUploaders, nil)
	require.NoError(t, err)

	assert.Len(t, batch.Items, 13)
	assert.Len(t, batch.Photos, 10)
	assert.Equal(t, "p24", batch.Photos[0].ID)
	assert.Equal(t, "p15", batch.Photos[9].ID)
	requireNewestFirst(t, Snapshot{Items: toViews(batch.Items)})

	for _, item := range batch.Items {
		assert.True(t, item.Kind.Valid(), "item %s has no kind", item.ID)
	}
}

func TestFeedMerger_CursorOnlyAppliesToPhotos(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 25, named("ayse"))
	seedVideos(t, store, 3, named("mehmet"))

	m := NewFeedMerger(store, 10)
	first, err := m.FetchNextBatch(context.Background(), AllUploaders, nil)
	require.NoError(t, err)

	after := repository.CursorAt(first.Photos[len(first.Photos)-1], model.FieldCreatedAt)
	second, err := m.FetchNextBatch(context.Background(), AllUploaders, after)
	require.NoError(t, err)

	assert.Equal(t, "p14", second.Photos[0].ID)
	videos := 0
	for _, item := range second.Items {
		if item.Kind == model.MediaKindVideo {
			videos++
		}
	}
	assert.Equal(t, 3, videos, "videos are re-fetched from the top every call")
}

func TestFeedMerger_FilterAppliesToBothCollections(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	alternate := func(i int) string {
		if i%2 == 0 {
			return "ayse"
		}
		return "mehmet"
	}
	seedPhotos(t, store, 8, alternate)
	seedVideos(t, store, 3, alternate)

	batch, err := NewFeedMerger(store, 10).FetchNextBatch(context.Background(), " ayse ", nil)
	require.NoError(t, err)
	require.NotEmpty(t, batch.Items)
	for _, item := range batch.Items {
		assert.Equal(t, "ayse", item.UploaderName)
	}
}

func TestFeedMerger_SkipsDeleted(t *testing.T) {
	store := repository.NewMemoryMediaStore()
	seedPhotos(t, store, 3, named("ayse"))
	require.NoError(t, store.UpdateFields(context.Background(), model.CollectionPhotos, "p1", map[string]any{
		model.FieldIsDeleted: true,
		model.FieldDeletedAt: t0,
	}))

	batch, err := NewFeedMerger(store, 10).FetchNextBatch(context.Background(), AllUploaders, nil)
	require.NoError(t, err)
	for _, item := range batch.Items {
		assert.NotEqual(t, "p1", item.ID)
	}
	assert.Len(t, batch.Items, 2)
}

func TestFeedMerger_Error(t *testing.T) {
	store := newFlakyStore()
	store.setQueryErr(errors.New("unavailable"))

	batch, err := NewFeedMerger(store, 10).FetchNextBatch(context.Background(), AllUploaders, nil)
	assert.Nil(t, batch)
	assert.Error(t, err)
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	items := []*model.MediaItem{
		{ID: "a", CreatedAt: t0},
		{ID: "b", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(1)},
	}
	SortNewestFirst(items)
	assert.Equal(t, []string{"c", "a", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestIsAllUploaders(t *testing.T) {
	assert.True(t, IsAllUploaders(""))
	assert.True(t, IsAllUploaders("all"))
	assert.True(t, IsAllUploaders(" ALL "))
	assert.False(t, IsAllUploaders("ayse"))
}

func toViews(items []*model.MediaItem) []ItemView {
	out := make([]ItemView, len(items))
	for i, item := range items {
		out[i] = ItemView{Item: *item}
	}
	return out
}

func TestFeedQuery_UploaderFilter(t *testing.T) {
	after := &repository.PageCursor{ID: "p3"}
	tests := []struct {
		name    string
		filter  string
		filters []repository.Equal
		in      []repository.In
	}{
		{name: "all", filter: "all", filters: []repository.Equal{{Field: model.FieldIsDeleted, Value: false}}},
		{name: "empty", filter: " ", filters: []repository.Equal{{Field: model.FieldIsDeleted, Value: false}}},
		{
			name:   "named",
			filter: " ayse ",
			filters: []repository.Equal{
				{Field: model.FieldIsDeleted, Value: false},
				{Field: model.FieldUploaderName, Value: "ayse"},
			},
		},
		{
			name:    "unknown matches unnamed",
			filter:  model.UnknownUploader,
			filters: []repository.Equal{{Field: model.FieldIsDeleted, Value: false}},
			in:      []repository.In{{Field: model.FieldUploaderName, Values: []any{"", model.UnknownUploader}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := FeedQuery(tt.filter, after, 7)
			assert.Equal(t, tt.filters, q.Filters)
			assert.Equal(t, tt.in, q.In)
			assert.Equal(t, 7, q.Limit)
			assert.Equal(t, after, q.StartAfter)
			assert.Equal(t, model.FieldCreatedAt, q.OrderBy)
		})
	}
}
