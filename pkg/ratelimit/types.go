package ratelimit

import (
	"context"
	"errors"
	"time"
)

// DefaultWindow is the rate-limit window: tier limits are expressed in
// requests per minute.
const DefaultWindow = time.Minute

var (
	ErrInvalidLimit  = errors.New("ratelimit: limit must be positive")
	ErrStoreRequired = errors.New("ratelimit: store is required")
	ErrKeyRequired   = errors.New("ratelimit: key is required")
)

// Result is the decision metadata for one consume attempt. It is fully
// populated on both success and rejection so callers can surface
// standard rate-limit headers unconditionally.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before retrying, zero if allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// ResetInSeconds returns the reset hint rounded up to whole seconds,
// minimum one. Used for the Retry-After header.
func (r *Result) ResetInSeconds() int {
	secs := int(time.Until(r.ResetAt).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Store tracks two adjacent fixed windows per key. Slide atomically
// increments the window containing now and returns both window counts;
// concurrent callers for the same key serialize on the backing counter,
// so two requests can never both consume the last point.
type Store interface {
	Slide(ctx context.Context, key string, now time.Time, window time.Duration) (current, previous int64, err error)

	// Peek reads both window counts without consuming a point. Used for
	// reporting; consistency with concurrent consumers is best-effort.
	Peek(ctx context.Context, key string, now time.Time, window time.Duration) (current, previous int64, err error)
}
