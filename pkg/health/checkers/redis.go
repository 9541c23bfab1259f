package checkers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisChecker pings the search cache.
type RedisChecker struct {
	client redis.Cmdable
}

func NewRedisChecker(client redis.Cmdable) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// FuncChecker adapts a probe function, for dependencies such as the broker
// that expose their own health method.
type FuncChecker struct {
	name string
	fn   func(context.Context) error
}

func NewFuncChecker(name string, fn func(context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (c *FuncChecker) Name() string                    { return c.name }
func (c *FuncChecker) Check(ctx context.Context) error { return c.fn(ctx) }
