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

type SubAccountRepository struct {
	collection *mongo.Collection
}

func NewSubAccountRepository(db *mongo.Database) repository.ISubAccount {
	return &SubAccountRepository{collection: db.Collection("sub_accounts")}
}

func EnsureSubAccountIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("sub_accounts")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "platform", Value: 1},
			{Key: "subAccountId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Upsert refreshes name, kind and metadata from the platform. The connected
// flag of an existing document is left alone so a re-discovery does not undo
// a user's toggle; new documents start connected.
func (r *SubAccountRepository) Upsert(ctx context.Context, sub *model.SubAccount) error {
	now := time.Now().UTC()
	filter := bson.M{
		"userId":       sub.UserID,
		"platform":     sub.Platform,
		"subAccountId": sub.SubAccountID,
	}
	update := bson.M{
		"$set": bson.M{
			"name":      sub.Name,
			"kind":      sub.Kind,
			"metadata":  sub.Metadata,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"userId":       sub.UserID,
			"platform":     sub.Platform,
			"subAccountId": sub.SubAccountID,
			"connected":    true,
			"createdAt":    now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert sub account: %w", err)
	}
	return nil
}

func (r *SubAccountRepository) Get(ctx context.Context, userID, platform, subAccountID string) (*model.SubAccount, error) {
	var doc model.SubAccount
	err := r.collection.FindOne(ctx, bson.M{
		"userId":       userID,
		"platform":     platform,
		"subAccountId": subAccountID,
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// Unknown subAccountId; distinct from a platform-level ErrNotConnected.
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get sub account: %w", err)
	}
	return &doc, nil
}

func (r *SubAccountRepository) List(ctx context.Context, userID, platform string, connectedOnly bool) ([]model.SubAccount, error) {
	filter := bson.M{"userId": userID, "platform": platform}
	if connectedOnly {
		filter["connected"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sub accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []model.SubAccount
	for cursor.Next(ctx) {
		var doc model.SubAccount
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode sub account: %w", err)
		}
		subs = append(subs, doc)
	}
	return subs, cursor.Err()
}

func (r *SubAccountRepository) SetConnected(ctx context.Context, userID, platform, subAccountID string, connected bool) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "platform": platform, "subAccountId": subAccountID},
		bson.M{"$set": bson.M{"connected": connected, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set sub account connected: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *SubAccountRepository) SaveInsights(ctx context.Context, userID, platform, subAccountID string, insights map[string]any) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "platform": platform, "subAccountId": subAccountID},
		bson.M{"$set": bson.M{"insights": insights, "insightsSyncedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("save sub account insights: %w", err)
	}
	return nil
}

func (r *SubAccountRepository) ClearInsights(ctx context.Context, userID, platform, subAccountID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "platform": platform, "subAccountId": subAccountID},
		bson.M{
			"$unset": bson.M{"insights": "", "insightsSyncedAt": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear sub account insights: %w", err)
	}
	return nil
}
