package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node use.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowPair
}

type windowPair struct {
	start    time.Time
	current  int64
	previous int64
}

// NewMemoryStore creates an in-memory sliding window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*windowPair)}
}

// Slide implements Store. The whole shift-and-increment happens under
// one lock, mirroring the atomicity of the Redis script.
func (s *MemoryStore) Slide(ctx context.Context, key string, now time.Time, window time.Duration) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	windowStart := now.Truncate(window)

	w, ok := s.windows[key]
	if !ok {
		w = &windowPair{start: windowStart}
		s.windows[key] = w
	}

	switch {
	case w.start.Equal(windowStart):
		// still in the same window
	case w.start.Equal(windowStart.Add(-window)):
		// advanced exactly one window: current becomes previous
		w.previous = w.current
		w.current = 0
		w.start = windowStart
	default:
		// idle for more than a window: both counts are stale
		w.previous = 0
		w.current = 0
		w.start = windowStart
	}

	w.current++
	return w.current, w.previous, nil
}

// Peek implements Store.
func (s *MemoryStore) Peek(ctx context.Context, key string, now time.Time, window time.Duration) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, 0, nil
	}

	windowStart := now.Truncate(window)
	switch {
	case w.start.Equal(windowStart):
		return w.current, w.previous, nil
	case w.start.Equal(windowStart.Add(-window)):
		return 0, w.current, nil
	default:
		return 0, 0, nil
	}
}

// Reset clears the state for key. Test helper.
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}
