package httpclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"channelhub/domain/model"
)

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	out, err := WithRetry(context.Background(), 3, time.Millisecond, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &model.UpstreamError{Platform: "shopify", Status: 503}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, 3, calls)
}

func TestWithRetry_NonRetryablePropagatesImmediately(t *testing.T) {
	calls := 0
	rejected := &model.UpstreamError{Platform: "facebook_ads", Status: 401}
	_, err := WithRetry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		return 0, rejected
	})

	require.ErrorIs(t, err, error(rejected))
	require.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustedReturnsLastError(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		return 0, &model.UpstreamError{Platform: "shopify", Status: 500, Code: "server_down"}
	})

	require.Error(t, err)
	require.Equal(t, 3, calls)
	var ue *model.UpstreamError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, 500, ue.Status)
}

func TestWithRetry_ContextCancelAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := WithRetry(ctx, 3, time.Minute, func() (int, error) {
		calls++
		return 0, &model.UpstreamError{Status: 502}
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
