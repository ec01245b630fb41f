// Package scheduler runs the resample loop: it moves handed-off entries into
// the time-ordered queue, dispatches due batches as one bulk lookup each and
// re-arms every item for its next interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/handoff"
	"github.com/ethpandaops/resampler/internal/intervals"
	"github.com/ethpandaops/resampler/internal/leader"
	"github.com/ethpandaops/resampler/internal/metrics"
	"github.com/ethpandaops/resampler/internal/pipeline"
	"github.com/ethpandaops/resampler/internal/reddit"
	"github.com/ethpandaops/resampler/internal/schedule"
	"github.com/ethpandaops/resampler/internal/snapshot"
	"github.com/ethpandaops/resampler/internal/wallclock"
)

const workerName = "scheduler"

// Retirement reasons.
const (
	retiredCompleted = "completed"
	retiredVanished  = "vanished"
	retiredAborted   = "aborted"
)

// Stats is a point-in-time view of scheduler progress.
type Stats struct {
	Pending int    `json:"pending"`
	Batches uint64 `json:"batches"`
	Written uint64 `json:"written"`
	Retired uint64 `json:"retired"`
}

// Scheduler owns the resample queue of one feed-group. The queue is only
// touched from the goroutine calling Run or Step.
type Scheduler struct {
	log     logrus.FieldLogger
	cfg     Config
	table   *intervals.Table
	lookup  reddit.Lookup
	sink    snapshot.Sink
	in      handoff.Channel
	elector leader.Elector
	clock   wallclock.Clock
	queue   *schedule.Queue

	pending atomic.Int64
	batches atomic.Uint64
	written atomic.Uint64
	retired atomic.Uint64
}

// New creates a scheduler. cfg must have been validated.
func New(
	log logrus.FieldLogger,
	cfg Config,
	table *intervals.Table,
	lookup reddit.Lookup,
	sink snapshot.Sink,
	in handoff.Channel,
	elector leader.Elector,
	clock wallclock.Clock,
) *Scheduler {
	return &Scheduler{
		log:     log.WithFields(logrus.Fields{"component": workerName, "group": cfg.Group}),
		cfg:     cfg,
		table:   table,
		lookup:  lookup,
		sink:    sink,
		in:      in,
		elector: elector,
		clock:   clock,
		queue:   schedule.NewQueue(),
	}
}

// Run dispatches due batches until ctx is cancelled or a fatal error occurs.
// It returns nil on cancellation. Queue state survives across Run calls, so a
// supervisor may call Run again after a failure.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.WithFields(logrus.Fields{
		"batch_size":    s.cfg.BatchSize,
		"poll_interval": s.cfg.PollInterval,
		"pending":       s.queue.Len(),
	}).Info("Scheduler started")

	for {
		dispatched, err := s.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("Scheduler stopped")

				return nil
			}

			s.log.WithError(err).WithField("kind", pipeline.KindOf(err)).Error("Scheduler failed")

			return err
		}

		if dispatched > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			s.log.WithField("pending", s.queue.Len()).Info("Scheduler stopped")

			return nil
		case <-s.clock.After(s.sleep()):
		case <-s.in.Ready():
		}
	}
}

// Step runs one loop iteration: drain the handoff, then dispatch at most one
// due batch. It returns the number of entries dispatched. Nothing happens
// while this instance is not the feed-group leader.
func (s *Scheduler) Step(ctx context.Context) (int, error) {
	if !s.elector.IsLeader() {
		return 0, nil
	}

	if err := s.drain(ctx); err != nil {
		return 0, err
	}

	now := s.clock.Now()

	batch := s.queue.PopBatch(now, s.cfg.BatchSize)
	if len(batch) == 0 {
		return 0, nil
	}

	s.setPending()

	if err := s.dispatch(ctx, batch, now); err != nil {
		return len(batch), err
	}

	return len(batch), nil
}

// Stats returns current counters. Safe for concurrent use.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Pending: int(s.pending.Load()),
		Batches: s.batches.Load(),
		Written: s.written.Load(),
		Retired: s.retired.Load(),
	}
}

func (s *Scheduler) drain(ctx context.Context) error {
	entries, err := s.in.Drain(ctx, s.cfg.DrainLimit)
	if err != nil {
		return pipeline.HandoffError(workerName, fmt.Errorf("drain: %w", err))
	}

	for _, e := range entries {
		if err := s.queue.Push(e); err != nil {
			if errors.Is(err, schedule.ErrDuplicate) {
				s.log.WithField("id", e.Key).Warn("Dropping duplicate schedule entry")

				continue
			}

			return err
		}
	}

	if len(entries) > 0 {
		s.setPending()
		s.log.WithField("count", len(entries)).Debug("Drained handoff")
	}

	return nil
}

func (s *Scheduler) dispatch(ctx context.Context, batch []schedule.Entry, now time.Time) error {
	refs := make([]string, len(batch))
	for i, e := range batch {
		refs[i] = e.Ref
	}

	log := s.log.WithField("size", len(batch))
	log.WithField("refs", refs).Debug("Looking up batch")

	metrics.BatchSize.Observe(float64(len(batch)))
	metrics.DispatchLag.Observe(now.Sub(batch[0].DueAt).Seconds())

	started := time.Now()
	results, err := s.lookup.Info(ctx, refs)
	metrics.LookupDuration.Observe(time.Since(started).Seconds())

	if err == nil && len(results) != len(batch) {
		err = fmt.Errorf("lookup returned %d results for %d refs", len(results), len(batch))
	}

	if err != nil {
		metrics.Batches.WithLabelValues("error").Inc()
		s.abort(batch, "lookup failure")

		return pipeline.LookupError(workerName, err)
	}

	metrics.Batches.WithLabelValues("ok").Inc()
	s.batches.Add(1)

	live := make([]schedule.Entry, 0, len(batch))
	subs := make([]*reddit.Submission, 0, len(batch))

	for i, e := range batch {
		if results[i] == nil {
			s.retire(e, retiredVanished)
			log.WithField("id", e.Key).Warn("Item vanished from remote, retiring")

			continue
		}

		live = append(live, e)
		subs = append(subs, results[i])
	}

	// Write the whole batch before re-arming any of it, so a failed batch
	// leaves no entry half-processed.
	for i, e := range live {
		rec := snapshot.FromSubmission(subs[i], nil, now, s.table.Minutes(e.Interval))
		if err := s.sink.Append(ctx, rec); err != nil {
			s.abort(live, "sink failure")

			return pipeline.SinkError(workerName, fmt.Errorf("append %s: %w", e.Key, err))
		}

		s.written.Add(1)
		metrics.RecordsWritten.WithLabelValues(string(snapshot.Resample)).Inc()
	}

	for _, e := range live {
		next, ok := e.Next(s.table, now)
		if !ok {
			s.retire(e, retiredCompleted)

			continue
		}

		// PopBatch cleared every batch key from the pending set and nothing is
		// pushed between the pop and here, so a duplicate cannot occur.
		if err := s.queue.Push(next); err != nil {
			log.WithError(err).WithField("id", e.Key).Error("Failed to re-arm item")
			s.retire(e, retiredAborted)
		}
	}

	s.setPending()
	log.WithField("pending", s.queue.Len()).Debug("Dispatched batch")

	return nil
}

// abort retires entries that leave the schedule because their batch failed.
func (s *Scheduler) abort(entries []schedule.Entry, cause string) {
	for _, e := range entries {
		s.retire(e, retiredAborted)
	}

	s.log.WithFields(logrus.Fields{
		"count": len(entries),
		"cause": cause,
	}).Warn("Aborted batch, items leave the schedule")
}

func (s *Scheduler) retire(e schedule.Entry, reason string) {
	s.retired.Add(1)
	metrics.ItemsRetired.WithLabelValues(reason).Inc()

	s.log.WithFields(logrus.Fields{
		"id":       e.Key,
		"interval": e.Interval,
		"reason":   reason,
	}).Debug("Retired item")
}

// sleep is how long to wait before the next iteration: until the earliest due
// time, capped at PollInterval.
func (s *Scheduler) sleep() time.Duration {
	next, ok := s.queue.NextDue()
	if !ok || !s.elector.IsLeader() {
		return s.cfg.PollInterval
	}

	return min(max(next.Sub(s.clock.Now()), 0), s.cfg.PollInterval)
}

func (s *Scheduler) setPending() {
	n := s.queue.Len()

	s.pending.Store(int64(n))
	metrics.QueueDepth.Set(float64(n))
}
