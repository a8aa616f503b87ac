package repository

import (
	"context"

	"channelhub/domain/model"
)

// ISubAccount is the flat table of platform child resources (ad accounts,
// shops), keyed by (userId, platform, subAccountId).
type ISubAccount interface {
	// Upsert appends or updates a sub-account by its natural platform ID.
	// The connected flag of an existing document is preserved.
	Upsert(ctx context.Context, sub *model.SubAccount) error
	Get(ctx context.Context, userID, platform, subAccountID string) (*model.SubAccount, error)
	// List returns the user's sub-accounts; connectedOnly restricts to those
	// participating in data fetches.
	List(ctx context.Context, userID, platform string, connectedOnly bool) ([]model.SubAccount, error)
	SetConnected(ctx context.Context, userID, platform, subAccountID string, connected bool) error
	SaveInsights(ctx context.Context, userID, platform, subAccountID string, insights map[string]any) error
	ClearInsights(ctx context.Context, userID, platform, subAccountID string) error
}
