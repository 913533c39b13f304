package ratelimit

import (
	"context"
	"math"
	"time"
)

// SlidingWindow rate-limits by blending two adjacent fixed windows: the
// decision weighs the current window's count plus the previous window's
// count scaled by how much of it still overlaps the sliding window. This
// removes the fixed-window edge burst where a client lands 2x the limit
// inside one second straddling a boundary.
//
// Consume is increment-first: rejected attempts still count, matching
// the semantics the API has always had.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit requests per window.
func NewSlidingWindow(store Store, limit int, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &SlidingWindow{store: store, limit: limit, window: window, now: time.Now}, nil
}

// Limit returns the configured points per window.
func (sw *SlidingWindow) Limit() int {
	return sw.limit
}

// Allow consumes one point for key and returns the decision. The Result
// is always fully populated; on rejection, ResetAt points at the end of
// the current fixed window.
func (sw *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := sw.now()
	cur, prev, err := sw.store.Slide(ctx, key, now, sw.window)
	if err != nil {
		return nil, err
	}

	windowStart := now.Truncate(sw.window)
	elapsed := now.Sub(windowStart)
	prevWeight := 1 - float64(elapsed)/float64(sw.window)
	weighted := float64(prev)*prevWeight + float64(cur)

	remaining := sw.limit - int(math.Ceil(weighted))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   weighted <= float64(sw.limit),
		Limit:     sw.limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(sw.window),
	}, nil
}

// Status reports the current state for key without consuming a point.
func (sw *SlidingWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := sw.now()
	cur, prev, err := sw.store.Peek(ctx, key, now, sw.window)
	if err != nil {
		return nil, err
	}

	windowStart := now.Truncate(sw.window)
	elapsed := now.Sub(windowStart)
	weighted := float64(prev)*(1-float64(elapsed)/float64(sw.window)) + float64(cur)

	remaining := sw.limit - int(math.Ceil(weighted))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   remaining > 0,
		Limit:     sw.limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(sw.window),
	}, nil
}
