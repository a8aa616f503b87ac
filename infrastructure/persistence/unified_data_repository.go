package persistence

import (
	"context"
	"fmt"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UnifiedDataRepository struct {
	collection *mongo.Collection
}

func NewUnifiedDataRepository(db *mongo.Database) repository.IUnifiedData {
	return &UnifiedDataRepository{collection: db.Collection("unified_data")}
}

// EnsureUnifiedDataIndexes creates the unique natural-key index and the
// read-path index.
func EnsureUnifiedDataIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("unified_data")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "platform", Value: 1},
				{Key: "dataType", Value: 1},
				{Key: "originalId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "lastUpdated", Value: -1}},
		},
	})
	return err
}

func (r *UnifiedDataRepository) Upsert(ctx context.Context, userID, platform, dataType, originalID string, payload model.UnifiedPayload) error {
	if !model.ValidDataType(dataType) {
		return &model.ValidationError{Field: "dataType", Reason: fmt.Sprintf("unknown data type %q", dataType)}
	}

	now := time.Now().UTC()
	filter := bson.M{
		"userId":     userID,
		"platform":   platform,
		"dataType":   dataType,
		"originalId": originalID,
	}
	update := bson.M{
		"$set": bson.M{
			"userId":      userID,
			"platform":    platform,
			"dataType":    dataType,
			"originalId":  originalID,
			"data":        payload,
			"lastUpdated": now,
			"syncedAt":    now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert unified data: %w", err)
	}
	return nil
}

func (r *UnifiedDataRepository) List(ctx context.Context, userID, platform, dataType string) ([]model.UnifiedData, error) {
	filter := bson.M{"userId": userID, "platform": platform}
	if dataType != "" {
		filter["dataType"] = dataType
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list unified data: %w", err)
	}
	defer cursor.Close(ctx)

	var records []model.UnifiedData
	for cursor.Next(ctx) {
		var doc model.UnifiedData
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode unified data: %w", err)
		}
		records = append(records, doc)
	}
	return records, cursor.Err()
}
