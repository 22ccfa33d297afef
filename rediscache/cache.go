// Package rediscache implements agent.Cache on Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	backend "github.com/redis/go-redis/v9"
	"github.com/tbxark/hotelagent/agent"
)

const DefaultPrefix = "hotelagent:"

var _ agent.Cache[any] = (*Cache[any])(nil)

// Cache stores JSON encoded values under a key prefix.
type Cache[S any] struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*options)

type options struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration refreshed on every write. Zero keeps keys
// forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// NewClient dials nothing; go-redis connects lazily on first use.
func NewClient(addr, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func New[S any](client *backend.Client, opts ...Option) *Cache[S] {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[S]{
		client: client,
		prefix: o.prefix,
		ttl:    o.ttl,
	}
}

func (c *Cache[S]) key(key string) string {
	return c.prefix + key
}

func (c *Cache[S]) Set(ctx context.Context, key string, val S) error {
	data, err := sonic.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (c *Cache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var val S
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return val, false, nil
		}
		return val, false, fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := sonic.Unmarshal(data, &val); err != nil {
		return val, false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return val, true, nil
}

func (c *Cache[S]) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *Cache[S]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity to the redis server. It backs /healthz when
// sessions live in redis.
func (c *Cache[S]) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
