package httpclient

import (
	"context"
	"time"

	"channelhub/domain/model"
	"channelhub/infrastructure/logger"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// WithRetry invokes call up to attempts times, sleeping a fixed delay between
// tries. Only transiently classified errors are retried; everything else
// propagates on first occurrence. This wraps individual outbound API calls,
// never a whole sync pipeline.
func WithRetry[T any](ctx context.Context, attempts int, delay time.Duration, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !model.IsRetryable(err) || attempt == attempts {
			return zero, err
		}
		logger.GetLogger().WithField("error", err).WithField("attempt", attempt).Warn("Transient upstream failure, retrying")
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}
