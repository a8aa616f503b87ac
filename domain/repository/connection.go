package repository

import (
	"context"
	"time"

	"channelhub/domain/model"
)

// IConnection is the credential store: encrypted per-(user, platform) OAuth
// credentials plus sync bookkeeping. All operations are single-document
// upserts; last write wins.
type IConnection interface {
	// Store encrypts credentials and upserts the connection record,
	// setting status=connected and connectedAt.
	Store(ctx context.Context, userID, platform string, creds model.Credentials, metadata map[string]string) error
	// Get returns the decrypted credentials, or model.ErrNotConnected when no
	// record exists or the connection is not in the connected state.
	Get(ctx context.Context, userID, platform string) (model.Credentials, error)
	// MarkSyncResult always updates lastSyncAt; a non-nil syncErr records
	// lastError without changing the connection status.
	MarkSyncResult(ctx context.Context, userID, platform string, at time.Time, syncErr error) error
	// Disconnect removes the stored credential blob and flips the status.
	Disconnect(ctx context.Context, userID, platform string) error
	// Status lists per-platform connection state for one user.
	Status(ctx context.Context, userID string) ([]model.ConnectionStatus, error)
}
