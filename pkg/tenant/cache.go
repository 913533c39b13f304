package tenant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the two-layer lookup accelerator for tenant resolution:
// slug→Tenant snapshots plus domain→slug string mappings. All entries
// are derived, disposable state; implementations are best-effort and a
// failed read must surface as a miss, never as an error.
type Cache interface {
	GetTenant(ctx context.Context, key string) (*Tenant, bool)
	SetTenant(ctx context.Context, key string, t *Tenant, ttl time.Duration)

	GetString(ctx context.Context, key string) (string, bool)
	SetString(ctx context.Context, key, value string, ttl time.Duration)

	Delete(ctx context.Context, key string)
}

func slugKey(slug string) string     { return "tenant:slug:" + slug }
func domainKey(domain string) string { return "tenant:domain:" + domain }

// redisCache stores tenant snapshots as JSON in Redis so cache entries
// are shared across all nodes of the platform.
type redisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a Redis-backed tenant cache.
func NewRedisCache(client redis.UniversalClient) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) GetTenant(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (c *redisCache) SetTenant(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) GetString(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *redisCache) SetString(ctx context.Context, key, value string, ttl time.Duration) {
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, key).Err()
}

// memoryCache is an in-process TTL cache with LRU eviction. Used in tests
// and single-node deployments where Redis is not available.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	lru     []string
	maxSize int
}

type memoryItem struct {
	value     any
	expiresAt time.Time
}

// DefaultMemoryCacheSize bounds the in-memory cache.
const DefaultMemoryCacheSize = 1000

// NewMemoryCache creates an in-process tenant cache.
func NewMemoryCache() Cache {
	return &memoryCache{
		items:   make(map[string]memoryItem),
		maxSize: DefaultMemoryCacheSize,
	}
}

func (c *memoryCache) GetTenant(ctx context.Context, key string) (*Tenant, bool) {
	v, ok := c.get(key)
	if !ok {
		return nil, false
	}
	t, ok := v.(*Tenant)
	if !ok {
		return nil, false
	}
	return cloneTenant(t), true
}

func (c *memoryCache) SetTenant(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	// Cached entries are snapshots, matching the Redis JSON round-trip:
	// mutating a tenant after (or from) a cache call must not leak into
	// other readers.
	c.set(key, cloneTenant(t), ttl)
}

func cloneTenant(t *Tenant) *Tenant {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Settings.Features != nil {
		clone.Settings.Features = append([]string(nil), t.Settings.Features...)
	}
	return &clone
}

func (c *memoryCache) GetString(ctx context.Context, key string) (string, bool) {
	v, ok := c.get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *memoryCache) SetString(ctx context.Context, key, value string, ttl time.Duration) {
	c.set(key, value, ttl)
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.removeLRU(key)
}

func (c *memoryCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		c.removeLRU(key)
		return nil, false
	}
	c.touchLRU(key)
	return item.value, true
}

func (c *memoryCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		if len(c.lru) > 0 {
			evict := c.lru[0]
			c.lru = c.lru[1:]
			delete(c.items, evict)
		}
	}

	c.items[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	c.touchLRU(key)
}

func (c *memoryCache) touchLRU(key string) {
	c.removeLRU(key)
	c.lru = append(c.lru, key)
}

func (c *memoryCache) removeLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}
