package main

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/stuimpact/stuimpactweb2/pkg/cache"
	"github.com/stuimpact/stuimpactweb2/pkg/config"
)

const redisKeyPrefix = "stuimpact:"

// openRedisStore connects to REDIS_ADDR. Every command shares the key prefix
// so seed and find see what serve caches.
func openRedisStore(ctx context.Context, cfg config.Config) (*cache.RedisStore, *redis.Client, error) {
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisStore(rdb, redisKeyPrefix), rdb, nil
}
