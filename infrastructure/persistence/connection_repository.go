package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/security"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ConnectionRepository implements the credential store on MongoDB. Credentials
// are encrypted with AES-GCM before they hit the wire; the unique index on
// (userId, platform) makes concurrent Store calls converge on one document.
type ConnectionRepository struct {
	collection *mongo.Collection
	cipher     *security.Cipher
}

func NewConnectionRepository(db *mongo.Database, cipher *security.Cipher) repository.IConnection {
	return &ConnectionRepository{
		collection: db.Collection("platform_connections"),
		cipher:     cipher,
	}
}

// EnsureConnectionIndexes creates the unique (userId, platform) index.
func EnsureConnectionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("platform_connections").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "platform", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ConnectionRepository) Store(ctx context.Context, userID, platform string, creds model.Credentials, metadata map[string]string) error {
	blob, err := r.cipher.EncryptJSON(creds)
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"userId":      userID,
			"platform":    platform,
			"credentials": blob,
			"metadata":    metadata,
			"status":      model.StatusConnected,
			"connectedAt": now,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
		"$unset":       bson.M{"disconnectedAt": ""},
	}
	filter := bson.M{"userId": userID, "platform": platform}
	_, err = r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) Get(ctx context.Context, userID, platform string) (model.Credentials, error) {
	var doc model.PlatformConnection
	filter := bson.M{"userId": userID, "platform": platform}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Credentials{}, model.ErrNotConnected
	}
	if err != nil {
		return model.Credentials{}, fmt.Errorf("get connection: %w", err)
	}
	return r.decodeCredentials(doc)
}

// decodeCredentials enforces the connected-status gate before decrypting. A
// disconnected document, or one whose credential blob was already destroyed,
// reads the same as no document at all.
func (r *ConnectionRepository) decodeCredentials(doc model.PlatformConnection) (model.Credentials, error) {
	if doc.Status != model.StatusConnected || doc.Credentials == "" {
		return model.Credentials{}, model.ErrNotConnected
	}
	var creds model.Credentials
	if err := r.cipher.DecryptJSON(doc.Credentials, &creds); err != nil {
		return model.Credentials{}, fmt.Errorf("decrypt credentials: %w", err)
	}
	return creds, nil
}

func (r *ConnectionRepository) MarkSyncResult(ctx context.Context, userID, platform string, at time.Time, syncErr error) error {
	set := bson.M{"lastSyncAt": at, "updatedAt": time.Now().UTC()}
	if syncErr != nil {
		set["lastError"] = model.LastError{
			Message:   syncErr.Error(),
			Code:      model.ErrorCode(syncErr),
			Timestamp: time.Now().UTC(),
		}
	}

	filter := bson.M{"userId": userID, "platform": platform}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mark sync result: %w", err)
	}
	return nil
}

// Disconnect invalidates the stored token, not just the display flag.
func (r *ConnectionRepository) Disconnect(ctx context.Context, userID, platform string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":         model.StatusDisconnected,
			"disconnectedAt": now,
			"updatedAt":      now,
		},
		"$unset": bson.M{"credentials": ""},
	}
	filter := bson.M{"userId": userID, "platform": platform}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) Status(ctx context.Context, userID string) ([]model.ConnectionStatus, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer cursor.Close(ctx)

	var statuses []model.ConnectionStatus
	for cursor.Next(ctx) {
		var doc model.PlatformConnection
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode connection: %w", err)
		}
		statuses = append(statuses, model.ConnectionStatus{
			Platform:    doc.Platform,
			Connected:   doc.Status == model.StatusConnected,
			ConnectedAt: doc.ConnectedAt,
			LastSyncAt:  doc.LastSyncAt,
			LastError:   doc.LastError,
		})
	}
	return statuses, cursor.Err()
}
