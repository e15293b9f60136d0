package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 500 * time.Millisecond
)

// Options configures the Redis-backed idempotency store.
type Options struct {
	Addr           string
	DB             int
	PoolSize       int
	DialTimeout    time.Duration
	IOTimeout      time.Duration
	IdempotencyTTL time.Duration
}

func (o Options) clientOptions() *redis.Options {
	dial, io := o.DialTimeout, o.IOTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	if io <= 0 {
		io = defaultIOTimeout
	}
	return &redis.Options{
		Addr:         o.Addr,
		DB:           o.DB,
		PoolSize:     o.PoolSize,
		DialTimeout:  dial,
		ReadTimeout:  io,
		WriteTimeout: io,
	}
}

// Open connects to Redis, checks the server answers within the dial timeout
// and returns a store keyed under idempotency:.
func Open(ctx context.Context, opts Options) (*IdempotencyStore, error) {
	ro := opts.clientOptions()
	client := redis.NewClient(ro)

	pingCtx, cancel := context.WithTimeout(ctx, ro.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return NewIdempotencyStore(client, opts.IdempotencyTTL), nil
}
