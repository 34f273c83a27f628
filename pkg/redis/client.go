package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps go-redis with key building and operation logging. A nil
// *Client is tolerated by callers; the service degrades to database-only.
type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Nil is re-exported so callers don't import go-redis for the miss sentinel.
var Nil = redis.Nil

// TTL constants for the judging cache and lock keys.
const (
	TTLJudgeToken   = 5 * time.Minute  // token -> assignment cache
	TTLProgress     = 30 * time.Second // judge progress snapshots
	TTLActionLock   = 10 * time.Second // propose/approve idempotency locks
	TTLReminderLock = time.Hour        // judge reminder throttle
)

// NewClient parses the URL, connects, and verifies connectivity.
func NewClient(redisURL, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value. Returns redis.Nil on a miss.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		c.log.Warn("redis_get",
			zap.String("key", key),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
	return val, err
}

// Set stores a value with a TTL.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		c.log.Warn("redis_set",
			zap.String("key", key),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
	return err
}

// SetNX sets a value only if the key does not exist. This is the basis for
// the propose/approve idempotency locks.
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		c.log.Warn("redis_setnx",
			zap.String("key", key),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
	return ok, err
}

// Delete removes keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	err := c.rdb.Del(ctx, keys...).Err()
	if err != nil {
		c.log.Warn("redis_del", zap.Int("keys", len(keys)), zap.Error(err))
	}
	return err
}

// Exists reports how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("redis_exists", zap.Int("keys", len(keys)), zap.Error(err))
	}
	return n, err
}
