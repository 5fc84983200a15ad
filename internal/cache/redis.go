// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a Counter backed by Redis.
type RedisCounter struct {
	client *redis.Client
	prefix string
	closed atomic.Bool
}

// RedisOptions configures the Redis counter.
type RedisOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "ocourse:")
	Prefix string

	// PoolSize is the maximum number of connections (0 = use default)
	PoolSize int

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration

	// ReadTimeout is the timeout for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for write operations
	WriteTimeout time.Duration
}

// DefaultRedisOptions returns sensible defaults.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:         "ocourse:",
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// NewRedisCounter connects to Redis and verifies the connection.
func NewRedisCounter(opts RedisOptions) (*RedisCounter, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCounter{client: client, prefix: opts.Prefix}, nil
}

// NewRedisCounterFromURL creates a Redis counter from just a URL with default options.
func NewRedisCounterFromURL(url, prefix string) (*RedisCounter, error) {
	opts := DefaultRedisOptions()
	opts.URL = url
	if prefix != "" {
		opts.Prefix = prefix
	}
	return NewRedisCounter(opts)
}

func (c *RedisCounter) key(k string) string {
	return c.prefix + k
}

// Incr implements Counter.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	k := c.key(key)
	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Get implements Counter.
func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	n, err := c.client.Get(ctx, c.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetUntil implements Counter.
func (c *RedisCounter) SetUntil(ctx context.Context, key string, value int64, until time.Time) error {
	if c.closed.Load() {
		return ErrClosed
	}

	ttl := time.Until(until)
	if ttl <= 0 {
		return c.client.Del(ctx, c.key(key)).Err()
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// TTL implements Counter.
func (c *RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	ttl, err := c.client.PTTL(ctx, c.key(key)).Result()
	if err != nil {
		return 0, err
	}
	// -2 means missing, -1 means no expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Delete implements Counter.
func (c *RedisCounter) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.client.Del(ctx, c.key(key)).Err()
}

// Ping checks if the Redis connection is healthy.
func (c *RedisCounter) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCounter) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		return c.client.Close()
	}
	return nil
}

var _ Counter = (*RedisCounter)(nil)
