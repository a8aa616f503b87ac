package repository

import (
	"context"

	"channelhub/domain/model"
)

// IPlatformAdapter is the per-platform capability set. Adapters are plain data
// plus functions; the generic sync orchestration lives in the usecase layer.
type IPlatformAdapter interface {
	Platform() string
	// BuildAuthURL constructs the provider authorization URL for the given
	// opaque state nonce.
	BuildAuthURL(state string, p model.AuthParams) (string, error)
	// ExchangeCode trades the callback code for credentials and fetches the
	// initial account snapshot.
	ExchangeCode(ctx context.Context, p model.CallbackParams, sp model.StatePayload) (*model.CallbackResult, error)
	// FetchResources pulls the platform's resource collections (fanning out
	// internally where independent) and maps them to unified records.
	FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error)
}

// IInsightsFetcher refreshes the cached metrics blob of one sub-account.
// Implemented by adapters whose sub-accounts are independently toggled.
type IInsightsFetcher interface {
	FetchInsights(ctx context.Context, creds model.Credentials, sub model.SubAccount) (map[string]any, error)
}

// IOAuthState stores the OAuth state nonce between the connect redirect and
// the provider callback.
type IOAuthState interface {
	// Put issues a fresh state nonce bound to the payload.
	Put(ctx context.Context, payload model.StatePayload) (string, error)
	// Take retrieves and invalidates the payload; unknown or expired states fail.
	Take(ctx context.Context, state string) (model.StatePayload, error)
}

// IAlertPublisher fans raised alerts out to an external topic, best-effort.
type IAlertPublisher interface {
	Publish(ctx context.Context, alert *model.Alert) error
}
