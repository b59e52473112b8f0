// Package cache provides the Redis view cache, path invalidation and
// per-caller rate limiting.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. Every key it writes is placed under an
// optional namespace so several deployments can share one Redis.
type Cache struct {
	client    *redis.Client
	namespace string
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	namespace   string
	poolSize    int
	dialTimeout time.Duration
}

// WithNamespace prefixes every key with ns and a colon.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithPoolSize overrides the connection pool size.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithDialTimeout bounds how long connecting may take.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

// New connects to the Redis instance at redisURL and pings it.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	o := options{poolSize: 10, dialTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.MinIdleConns = 1
	redisOpts.DialTimeout = o.dialTimeout
	redisOpts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, namespace: o.namespace}, nil
}

// Ping reports whether Redis answers. Used by readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the Redis client for test setup.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// key places k under the cache namespace.
func (c *Cache) key(k string) string {
	return namespaced(c.namespace, k)
}

func namespaced(ns, k string) string {
	if ns == "" {
		return k
	}
	return ns + ":" + k
}
