package repository

import (
	"EventGallery/internal/model"
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreMediaStore struct {
	client *firestore.Client
}

func NewFirestoreMediaStore(client *firestore.Client) MediaStore {
	return &firestoreMediaStore{client: client}
}

// Query 组合等值过滤与 (orderBy, 文档ID) 游标分页
func (s *firestoreMediaStore) Query(ctx context.Context, collection string, q MediaQuery) ([]*model.MediaItem, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	for _, f := range q.In {
		query = query.Where(f.Field, "in", f.Values)
	}

	dir := firestore.Desc
	if q.Direction == SortAsc {
		dir = firestore.Asc
	}
	query = query.OrderBy(q.OrderBy, dir).OrderBy(firestore.DocumentID, dir)

	if q.StartAfter != nil {
		query = query.StartAfter(q.StartAfter.At, q.StartAfter.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	items := make([]*model.MediaItem, 0, q.Limit)
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", collection, err)
		}

		var item model.MediaItem
		if err = doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("firestore decode %s/%s: %w", collection, doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}
	return items, nil
}

func (s *firestoreMediaStore) UpdateFields(ctx context.Context, collection string, id string, fields map[string]any) error {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrMediaNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreMediaStore) Insert(ctx context.Context, collection string, item *model.MediaItem) (string, error) {
	col := s.client.Collection(collection)
	if item.ID != "" {
		if _, err := col.Doc(item.ID).Create(ctx, item); err != nil {
			return "", fmt.Errorf("firestore create %s/%s: %w", collection, item.ID, err)
		}
		return item.ID, nil
	}

	ref, _, err := col.Add(ctx, item)
	if err != nil {
		return "", fmt.Errorf("firestore add %s: %w", collection, err)
	}
	return ref.ID, nil
}
