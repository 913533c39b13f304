package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter keeps monthly counters in Redis, shared across nodes.
type RedisCounter struct {
	client redis.UniversalClient
}

// NewRedisCounter creates a Redis-backed counter store.
func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr increments atomically and refreshes the TTL. The expire rides in
// the same pipeline as the increment so a counter never ends up without
// an expiry.
func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("usage: incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Get returns the counter value, zero when absent.
func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage: get %s: %w", key, err)
	}
	return v, nil
}

// MemoryCounter is an in-process Counter for tests and single-node use.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]memoryCounterEntry
}

type memoryCounterEntry struct {
	value     int64
	expiresAt time.Time
}

// NewMemoryCounter creates an in-memory counter store.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: make(map[string]memoryCounterEntry)}
}

// Incr implements Counter.
func (c *MemoryCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.values[key]
	if !ok || time.Now().After(e.expiresAt) {
		e = memoryCounterEntry{}
	}
	e.value++
	e.expiresAt = time.Now().Add(ttl)
	c.values[key] = e
	return e.value, nil
}

// Get implements Counter.
func (c *MemoryCounter) Get(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.values[key]
	if !ok || time.Now().After(e.expiresAt) {
		return 0, nil
	}
	return e.value, nil
}

// Delete removes a counter. Test helper for simulating cache loss.
func (c *MemoryCounter) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}
