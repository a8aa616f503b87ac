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

type AlertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) repository.IAlert {
	return &AlertRepository{collection: db.Collection("alerts")}
}

func EnsureAlertIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("alerts")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}}},
	})
	return err
}

// Create always inserts a new document. There is no dedup on type or
// platform; every raise is its own alert.
func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	res, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		alert.ID = oid
	}
	return nil
}

func (r *AlertRepository) List(ctx context.Context, userID string, unreadOnly bool) ([]model.Alert, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []model.Alert
	for cursor.Next(ctx) {
		var doc model.Alert
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode alert: %w", err)
		}
		alerts = append(alerts, doc)
	}
	return alerts, cursor.Err()
}

func (r *AlertRepository) MarkRead(ctx context.Context, userID, alertID string) error {
	oid, err := bson.ObjectIDFromHex(alertID)
	if err != nil {
		return &model.ValidationError{Field: "alertId", Reason: "not a valid object id"}
	}

	now := time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}},
	)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
