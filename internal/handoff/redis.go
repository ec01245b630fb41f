package handoff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/redis"
	"github.com/ethpandaops/resampler/internal/schedule"
)

// Compile-time interface compliance check.
var _ Channel = (*Redis)(nil)

// Redis is a cross-process channel backed by a Redis list. Producers LPUSH,
// the single consumer pops from the tail so entries drain in send order.
type Redis struct {
	log   logrus.FieldLogger
	redis redis.Client
	key   string
}

// NewRedis creates a Redis-list channel stored at key.
func NewRedis(log logrus.FieldLogger, client redis.Client, key string) *Redis {
	return &Redis{
		log:   log.WithField("component", "handoff_redis"),
		redis: client,
		key:   key,
	}
}

// Send pushes e onto the list.
func (r *Redis) Send(ctx context.Context, e schedule.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := r.redis.Push(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("push entry: %w", err)
	}

	return nil
}

// Drain pops up to limit entries.
func (r *Redis) Drain(ctx context.Context, limit int) ([]schedule.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	vals, err := r.redis.PopN(ctx, r.key, limit)
	if err != nil {
		return nil, fmt.Errorf("pop entries: %w", err)
	}

	entries := make([]schedule.Entry, 0, len(vals))

	for _, v := range vals {
		var e schedule.Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			r.log.WithError(err).WithField("payload", v).Error("Discarding malformed handoff entry")

			continue
		}

		entries = append(entries, e)
	}

	if len(entries) > 0 {
		r.log.WithField("count", len(entries)).Debug("Drained handoff entries")
	}

	return entries, nil
}

// Ready returns nil: the consumer polls Redis.
func (r *Redis) Ready() <-chan struct{} {
	return nil
}

// Len returns the list length.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.redis.Len(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("list length: %w", err)
	}

	return int(n), nil
}
