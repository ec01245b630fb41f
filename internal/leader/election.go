// Package leader makes sure a single scheduler process drains a feed-group's
// shared handoff list at any time.
package leader

//go:generate mockgen -package mocks -destination mocks/mock_elector.go github.com/ethpandaops/resampler/internal/leader Elector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/redis"
)

// Elector holds or competes for the feed-group scheduler lock.
type Elector interface {
	Start(ctx context.Context) error
	Stop() error
	IsLeader() bool
}

// Compile-time interface compliance check.
var (
	_ Elector = (*elector)(nil)
	_ Elector = Always{}
)

// Always is an Elector for single-process deployments that is always leader.
type Always struct{}

// Start is a no-op.
func (Always) Start(context.Context) error { return nil }

// Stop is a no-op.
func (Always) Stop() error { return nil }

// IsLeader always reports true.
func (Always) IsLeader() bool { return true }

type elector struct {
	log            logrus.FieldLogger
	cfg            Config
	redis          redis.Client
	id             string
	isLeader       bool
	loggedFollower bool
	mu             sync.RWMutex
	done           chan struct{}
	wg             sync.WaitGroup
}

// NewElector creates a Redis SETNX based elector with a random instance id.
func NewElector(log logrus.FieldLogger, cfg Config, redisClient redis.Client) Elector {
	return &elector{
		log:   log.WithField("component", "leader"),
		cfg:   cfg,
		redis: redisClient,
		id:    uuid.New().String(),
		done:  make(chan struct{}),
	}
}

// Start launches the election loop.
func (e *elector) Start(ctx context.Context) error {
	e.log.WithFields(logrus.Fields{
		"instance_id": e.id,
		"lock_key":    e.cfg.LockKey,
	}).Info("Starting scheduler lock election")

	e.wg.Add(1)

	go e.run(ctx)

	return nil
}

// Stop ends the election loop and releases the lock if held.
func (e *elector) Stop() error {
	e.log.Info("Stopping scheduler lock election")
	close(e.done)
	e.wg.Wait()

	if e.IsLeader() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := e.redis.Del(ctx, e.cfg.LockKey); err != nil {
			e.log.WithError(err).Warn("Failed to release scheduler lock")
		}

		e.setLeader(false)
	}

	return nil
}

// IsLeader reports whether this instance holds the lock.
func (e *elector) IsLeader() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.isLeader
}

func (e *elector) setLeader(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.isLeader = v
	if v {
		e.loggedFollower = false
	}
}

func (e *elector) run(ctx context.Context) {
	defer e.wg.Done()

	e.tryAcquire(ctx)

	renew := time.NewTicker(e.cfg.RenewInterval)
	defer renew.Stop()

	retry := time.NewTicker(e.cfg.RetryInterval)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-renew.C:
			if e.IsLeader() {
				e.renew(ctx)
			}
		case <-retry.C:
			if !e.IsLeader() {
				e.tryAcquire(ctx)
			}
		}
	}
}

func (e *elector) tryAcquire(ctx context.Context) {
	acquired, err := e.redis.SetNX(ctx, e.cfg.LockKey, e.id, e.cfg.LockTTL)
	if err != nil {
		e.log.WithError(err).Warn("Failed to acquire scheduler lock")

		return
	}

	if acquired {
		e.setLeader(true)
		e.log.WithField("instance_id", e.id).Info("Acquired scheduler lock")

		return
	}

	e.mu.Lock()
	shouldLog := !e.loggedFollower
	e.loggedFollower = true
	e.mu.Unlock()

	if shouldLog {
		holder, _ := e.redis.Get(ctx, e.cfg.LockKey)
		e.log.WithFields(logrus.Fields{
			"instance_id": e.id,
			"holder_id":   holder,
		}).Info("Scheduler lock held elsewhere, standing by")
	}
}

func (e *elector) renew(ctx context.Context) {
	holder, err := e.redis.Get(ctx, e.cfg.LockKey)
	if err != nil {
		e.log.WithError(err).Warn("Failed to read scheduler lock holder, stepping down")
		e.setLeader(false)

		return
	}

	if holder != e.id {
		e.log.WithField("holder_id", holder).Warn("Scheduler lock taken over by another instance")
		e.setLeader(false)

		return
	}

	if err := e.redis.Set(ctx, e.cfg.LockKey, e.id, e.cfg.LockTTL); err != nil {
		e.log.WithError(err).Warn("Failed to renew scheduler lock, stepping down")
		e.setLeader(false)

		return
	}

	e.log.Debug("Renewed scheduler lock")
}
