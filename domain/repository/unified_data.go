package repository

import (
	"context"

	"channelhub/domain/model"
)

// IUnifiedData stores the normalized cross-platform records, unique on
// (userId, platform, dataType, originalId). Upsert is idempotent aside from
// timestamps; history is not retained.
type IUnifiedData interface {
	Upsert(ctx context.Context, userID, platform, dataType, originalID string, payload model.UnifiedPayload) error
	// List returns stored records; dataType "" means all types for the platform.
	List(ctx context.Context, userID, platform, dataType string) ([]model.UnifiedData, error)
}
