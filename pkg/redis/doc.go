// Package redis connects the Redis instance backing the shared tenant
// resolution cache (tenant.RedisCache).
//
// Usage:
//
//	cfg, err := config.Load[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	cache := tenant.NewRedisCache(client, cfg.KeyPrefix)
package redis
