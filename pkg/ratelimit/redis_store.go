package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// slideScript increments the current fixed window and reads the previous
// one in a single atomic round trip. Keys expire after two windows: a
// window is consulted only while it is current or immediately previous.
var slideScript = redis.NewScript(`
local cur = redis.call('INCR', KEYS[1])
if cur == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local prev = tonumber(redis.call('GET', KEYS[2]) or '0')
return {cur, prev}
`)

// RedisStore keeps window counters in Redis so limits hold across all
// nodes serving a tenant.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit"}
}

// Slide implements Store.
func (s *RedisStore) Slide(ctx context.Context, key string, now time.Time, window time.Duration) (int64, int64, error) {
	windowStart := now.Truncate(window)
	curKey := s.windowKey(key, windowStart)
	prevKey := s.windowKey(key, windowStart.Add(-window))

	res, err := slideScript.Run(ctx, s.client,
		[]string{curKey, prevKey},
		(2 * window).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: slide: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("ratelimit: slide: unexpected script reply of length %d", len(res))
	}
	return res[0], res[1], nil
}

// Peek implements Store with a plain MGET; it never writes.
func (s *RedisStore) Peek(ctx context.Context, key string, now time.Time, window time.Duration) (int64, int64, error) {
	windowStart := now.Truncate(window)
	curKey := s.windowKey(key, windowStart)
	prevKey := s.windowKey(key, windowStart.Add(-window))

	vals, err := s.client.MGet(ctx, curKey, prevKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: peek: %w", err)
	}

	parse := func(v any) int64 {
		str, ok := v.(string)
		if !ok {
			return 0
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return parse(vals[0]), parse(vals[1]), nil
}

func (s *RedisStore) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, key, windowStart.Unix())
}
