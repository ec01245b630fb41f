package redis

//go:generate mockgen -package mocks -destination mocks/mock_client.go github.com/ethpandaops/resampler/internal/redis Client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Compile-time interface compliance check.
var _ Client = (*client)(nil)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Client provides the Redis operations the resampler needs: key/value for
// leader election and list operations for the cross-process handoff.
type Client interface {
	Start(ctx context.Context) error
	Stop() error
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Push(ctx context.Context, key string, values ...string) error
	PopN(ctx context.Context, key string, n int) ([]string, error)
	Len(ctx context.Context, key string) (int64, error)
}

type client struct {
	log    logrus.FieldLogger
	cfg    Config
	client *redis.Client
}

// NewClient creates a new Redis client. Start must be called before use.
func NewClient(log logrus.FieldLogger, cfg Config) Client {
	return &client{
		log: log.WithField("component", "redis"),
		cfg: cfg,
	}
}

// NewFromConn wraps an already configured go-redis client.
func NewFromConn(log logrus.FieldLogger, conn *redis.Client) Client {
	return &client{
		log:    log.WithField("component", "redis"),
		client: conn,
	}
}

// Start opens the connection pool and verifies connectivity.
func (c *client) Start(ctx context.Context) error {
	c.log.WithFields(logrus.Fields{
		"address": c.cfg.Address,
		"db":      c.cfg.DB,
	}).Info("Connecting to Redis")

	c.client = redis.NewClient(&redis.Options{
		Addr:         c.cfg.Address,
		Password:     c.cfg.Password,
		DB:           c.cfg.DB,
		DialTimeout:  c.cfg.DialTimeout,
		ReadTimeout:  c.cfg.ReadTimeout,
		WriteTimeout: c.cfg.WriteTimeout,
		PoolSize:     c.cfg.PoolSize,
	})

	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.log.Info("Redis client started")

	return nil
}

// Stop closes the connection pool.
func (c *client) Stop() error {
	c.log.Info("Stopping Redis client")

	if c.client != nil {
		return c.client.Close()
	}

	return nil
}

// Ping verifies Redis connectivity.
func (c *client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get retrieves a value by key.
func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return val, err
}

// Set stores a value with optional TTL (0 = no expiration).
func (c *client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys.
func (c *client) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// SetNX sets a key only if it does not exist yet.
func (c *client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// Push prepends values to the list at key.
func (c *client) Push(ctx context.Context, key string, values ...string) error {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	return c.client.LPush(ctx, key, args...).Err()
}

// PopN removes up to n values from the tail of the list at key, oldest first.
// An empty or missing list yields an empty slice.
func (c *client) PopN(ctx context.Context, key string, n int) ([]string, error) {
	vals, err := c.client.RPopCount(ctx, key, n).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}

	if err != nil {
		return nil, err
	}

	return vals, nil
}

// Len returns the length of the list at key.
func (c *client) Len(ctx context.Context, key string) (int64, error) {
	return c.client.LLen(ctx, key).Result()
}
