package checkers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err      error
	deadline time.Time
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.deadline, _ = ctx.Deadline()
	return p.err
}

func TestPostgresChecker(t *testing.T) {
	db := &fakePinger{}
	c := NewPostgresChecker(db)

	assert.Equal(t, "postgres", c.Name())
	require.NoError(t, c.Check(context.Background()))
	assert.WithinDuration(t, time.Now().Add(probeTimeout), db.deadline, probeTimeout)

	db.err = errors.New("connection refused")
	assert.EqualError(t, c.Check(context.Background()), "connection refused")
}

func TestRedisChecker_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	c := NewRedisChecker(client)
	assert.Equal(t, "redis", c.Name())
	assert.Error(t, c.Check(context.Background()))
}

func TestFuncChecker(t *testing.T) {
	down := errors.New("rabbitmq connection is closed")
	c := NewFuncChecker("rabbitmq", func(context.Context) error { return down })

	assert.Equal(t, "rabbitmq", c.Name())
	assert.ErrorIs(t, c.Check(context.Background()), down)
}
