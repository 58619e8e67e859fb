package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a custom domain stays routable after deactivation.
const DefaultCacheTTL = time.Minute

// Cache stores positive resolutions keyed by normalized host.
// It is an optimization only: resolution is correct without it.
type Cache interface {
	Get(ctx context.Context, host string) (Resolution, bool)
	Set(ctx context.Context, host string, res Resolution, ttl time.Duration) error
	Delete(ctx context.Context, host string) error
}

// cacheEntry is the serialized form of a Resolution.
type cacheEntry struct {
	Tenant   *Tenant `json:"tenant"`
	Strategy string  `json:"strategy"`
}

// MemoryCache is an in-process cache with per-entry expiry.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an in-memory cache purging expired entries every cleanup interval.
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &MemoryCache{items: gocache.New(DefaultCacheTTL, cleanup)}
}

func (c *MemoryCache) Get(_ context.Context, host string) (Resolution, bool) {
	v, ok := c.items.Get(host)
	if !ok {
		return Resolution{}, false
	}
	e := v.(cacheEntry)
	return Resolution{Tenant: e.Tenant, Strategy: e.Strategy}, true
}

func (c *MemoryCache) Set(_ context.Context, host string, res Resolution, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(host, cacheEntry{Tenant: res.Tenant, Strategy: res.Strategy}, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, host string) error {
	c.items.Delete(host)
	return nil
}

// Flush removes every entry.
func (c *MemoryCache) Flush() {
	c.items.Flush()
}

// RedisCache shares resolutions between processes.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a cache storing entries under prefix+host.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "tenant:host:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get treats any redis failure as a miss.
func (c *RedisCache) Get(ctx context.Context, host string) (Resolution, bool) {
	data, err := c.client.Get(ctx, c.prefix+host).Bytes()
	if err != nil {
		return Resolution{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil || e.Tenant == nil {
		return Resolution{}, false
	}
	return Resolution{Tenant: e.Tenant, Strategy: e.Strategy}, true
}

func (c *RedisCache) Set(ctx context.Context, host string, res Resolution, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	data, err := json.Marshal(cacheEntry{Tenant: res.Tenant, Strategy: res.Strategy})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+host, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, host string) error {
	if err := c.client.Del(ctx, c.prefix+host).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// noOpCache is a cache that doesn't cache anything.
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (Resolution, bool) { return Resolution{}, false }

func (noOpCache) Set(context.Context, string, Resolution, time.Duration) error { return nil }

func (noOpCache) Delete(context.Context, string) error { return nil }
