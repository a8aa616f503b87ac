package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
)

// Replay idempotency of Upsert itself rides on the unique
// (userId, platform, dataType, originalId) index from
// EnsureUnifiedDataIndexes and needs a live server to exercise; the
// validation gate below runs before any database call.
func TestUnifiedDataUpsert_RejectsUnknownDataType(t *testing.T) {
	repo := &UnifiedDataRepository{}

	err := repo.Upsert(context.Background(), "7", model.PlatformShopify, "subscription", "1", model.UnifiedPayload{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "dataType", verr.Field)
}

func TestUnifiedDataUpsert_AcceptsEveryKnownDataType(t *testing.T) {
	for _, dt := range []string{
		model.DataTypeCampaign,
		model.DataTypeOrder,
		model.DataTypeProduct,
		model.DataTypeInventory,
		model.DataTypeAnalytics,
		model.DataTypeCustomer,
		model.DataTypeTransaction,
	} {
		require.True(t, model.ValidDataType(dt), dt)
	}
}
