package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
)

func TestStateStore_PutTake(t *testing.T) {
	store := NewStateStore(nil)

	payload := model.StatePayload{
		UserID:     "7",
		Platform:   model.PlatformShopify,
		ShopDomain: "acme.myshopify.com",
	}
	state, err := store.Put(context.Background(), payload)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	got, err := store.Take(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestStateStore_TakeIsOneShot(t *testing.T) {
	store := NewStateStore(nil)

	state, err := store.Put(context.Background(), model.StatePayload{UserID: "7", Platform: model.PlatformFacebookAds})
	require.NoError(t, err)

	_, err = store.Take(context.Background(), state)
	require.NoError(t, err)

	_, err = store.Take(context.Background(), state)
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_TakeUnknownState(t *testing.T) {
	store := NewStateStore(nil)

	_, err := store.Take(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_PutSweepsExpiredStates(t *testing.T) {
	store := NewStateStore(nil).(*StateStore)

	stale, err := store.Put(context.Background(), model.StatePayload{UserID: "7", Platform: model.PlatformShopify})
	require.NoError(t, err)
	store.mu.Lock()
	entry := store.mem[stale]
	entry.expiresAt = time.Now().Add(-time.Minute)
	store.mem[stale] = entry
	store.mu.Unlock()

	_, err = store.Put(context.Background(), model.StatePayload{UserID: "8", Platform: model.PlatformShopify})
	require.NoError(t, err)

	store.mu.Lock()
	_, ok := store.mem[stale]
	store.mu.Unlock()
	require.False(t, ok)
}

func TestStateStore_StatesAreUnique(t *testing.T) {
	store := NewStateStore(nil)

	first, err := store.Put(context.Background(), model.StatePayload{UserID: "1", Platform: model.PlatformGoogleAds})
	require.NoError(t, err)
	second, err := store.Put(context.Background(), model.StatePayload{UserID: "1", Platform: model.PlatformGoogleAds})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
