package repository

import (
	"EventGallery/internal/model"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMediaStore struct {
	db *mongo.Database
}

func NewMongoMediaStore(db *mongo.Database) MediaStore {
	return &mongoMediaStore{db: db}
}

// EnsureMediaIndexes 为两个集合建立查询所需的复合索引
func EnsureMediaIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: model.FieldIsDeleted, Value: 1},
			{Key: model.FieldUploaderName, Value: 1},
			{Key: model.FieldCreatedAt, Value: -1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{
			{Key: model.FieldIsDeleted, Value: 1},
			{Key: model.FieldDeletedAt, Value: -1},
			{Key: "_id", Value: -1},
		}},
	}
	for _, col := range []string{model.CollectionPhotos, model.CollectionVideos} {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}

func (s *mongoMediaStore) Query(ctx context.Context, collection string, q MediaQuery) ([]*model.MediaItem, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	for _, f := range q.In {
		values := bson.A{}
		for _, v := range f.Values {
			values = append(values, v)
			// 空串同时匹配缺失字段
			if v == "" {
				values = append(values, nil)
			}
		}
		filter[f.Field] = bson.M{"$in": values}
	}

	dir := -1
	op := "$lt"
	if q.Direction == SortAsc {
		dir = 1
		op = "$gt"
	}

	// keyset: (orderBy, _id) 严格在游标之后
	if q.StartAfter != nil {
		filter["$or"] = bson.A{
			bson.M{q.OrderBy: bson.M{op: q.StartAfter.At}},
			bson.M{q.OrderBy: q.StartAfter.At, "_id": bson.M{op: q.StartAfter.ID}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	items := make([]*model.MediaItem, 0, q.Limit)
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", collection, err)
	}
	return items, nil
}

func (s *mongoMediaStore) UpdateFields(ctx context.Context, collection string, id string, fields map[string]any) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("mongo update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (s *mongoMediaStore) Insert(ctx context.Context, collection string, item *model.MediaItem) (string, error) {
	doc := *item
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, &doc); err != nil {
		return "", fmt.Errorf("mongo insert %s: %w", collection, err)
	}
	return doc.ID, nil
}
