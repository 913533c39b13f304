package ratelimit

import (
	"sync"
	"time"
)

// Registry hands out one limiter per distinct points value. Tier limits
// cluster on a handful of values (60, 300, 1000), so limiters are
// created lazily on first use and reused for every tenant sharing that
// limit; tenants with custom limits get their own on demand.
type Registry struct {
	mu       sync.RWMutex
	limiters map[int]*SlidingWindow
	store    Store
	window   time.Duration
}

// NewRegistry creates a limiter registry over the given store.
func NewRegistry(store Store, window time.Duration) *Registry {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Registry{
		limiters: make(map[int]*SlidingWindow),
		store:    store,
		window:   window,
	}
}

// Limiter returns the limiter for the exact points value.
func (r *Registry) Limiter(limit int) (*SlidingWindow, error) {
	r.mu.RLock()
	sw, ok := r.limiters[limit]
	r.mu.RUnlock()
	if ok {
		return sw, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sw, ok := r.limiters[limit]; ok {
		return sw, nil
	}

	sw, err := NewSlidingWindow(r.store, limit, r.window)
	if err != nil {
		return nil, err
	}
	r.limiters[limit] = sw
	return sw, nil
}
