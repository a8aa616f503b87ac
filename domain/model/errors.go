package model

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrNotConnected is returned when no active credential exists for a
// (user, platform) pair.
var ErrNotConnected = errors.New("platform not connected")

// ValidationError signals missing or malformed caller input (e.g. absent shop domain).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a non-2xx response from a third-party API.
type UpstreamError struct {
	Platform string
	Status   int
	Code     string
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error: status %d (%s)", e.Platform, e.Status, e.Code)
	}
	return fmt.Sprintf("%s API error: status %d", e.Platform, e.Status)
}

// Retryable reports whether the upstream failure is transient. Auth and other
// 4xx rejections are permanent and must surface on first occurrence.
func (e *UpstreamError) Retryable() bool {
	return e.Status >= 500
}

// IsRetryable classifies an outbound call failure: HTTP 5xx, connection resets
// and timeouts are transient; everything else propagates immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

// ErrorCode extracts a short machine code for sync bookkeeping.
func ErrorCode(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.Retryable() {
			return "UPSTREAM_TRANSIENT"
		}
		return "UPSTREAM_REJECTED"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "VALIDATION_ERROR"
	}
	if errors.Is(err, ErrNotConnected) {
		return "NOT_CONNECTED"
	}
	return "SYNC_ERROR"
}
