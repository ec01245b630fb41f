// Package supervisor runs long-lived workers behind a failure boundary:
// panics become errors and failed workers are restarted with backoff until
// their restart budget is spent.
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/metrics"
	"github.com/ethpandaops/resampler/internal/pipeline"
	"github.com/ethpandaops/resampler/internal/wallclock"
)

// Worker is a named long-lived task. Run must return nil once ctx is
// cancelled.
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// PanicError is returned for a worker that panicked.
type PanicError struct {
	Worker string
	Value  any
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Worker, e.Value)
}

// Supervisor restarts failed workers.
type Supervisor struct {
	log   logrus.FieldLogger
	cfg   Config
	clock wallclock.Clock

	mu     sync.RWMutex
	failed map[string]error
}

// New creates a supervisor. cfg must have been validated.
func New(log logrus.FieldLogger, cfg Config, clock wallclock.Clock) *Supervisor {
	return &Supervisor{
		log:    log.WithField("component", "supervisor"),
		cfg:    cfg,
		clock:  clock,
		failed: make(map[string]error, 2),
	}
}

// RunAll runs every worker concurrently and blocks until all have returned.
// A worker that exhausts its restarts stops alone: its siblings keep running
// until ctx is cancelled. The first such error is returned.
func (s *Supervisor) RunAll(ctx context.Context, workers ...Worker) error {
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for _, w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := s.Run(ctx, w)
			if err == nil {
				return
			}

			s.mu.Lock()
			s.failed[w.Name] = err
			s.mu.Unlock()

			if len(workers) > 1 {
				s.log.WithField("worker", w.Name).Warn("Worker stopped for good, remaining workers keep running")
			}

			once.Do(func() {
				firstErr = err
			})
		}()
	}

	wg.Wait()

	return firstErr
}

// Failed returns the names of workers that exhausted their restarts, sorted.
func (s *Supervisor) Failed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.failed))
	for name := range s.failed {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Run runs w until it returns cleanly, ctx is cancelled or it fails more than
// MaxRestarts times.
func (s *Supervisor) Run(ctx context.Context, w Worker) error {
	log := s.log.WithField("worker", w.Name)
	backoff := s.cfg.MinBackoff

	for restarts := 0; ; restarts++ {
		err := s.protect(ctx, w)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		kind := string(pipeline.KindOf(err))
		if kind == "" {
			kind = "other"
		}

		if restarts >= s.cfg.MaxRestarts {
			log.WithError(err).WithFields(logrus.Fields{
				"kind":     kind,
				"restarts": restarts,
			}).Error("Worker failed, no restarts left")

			return err
		}

		metrics.WorkerRestarts.WithLabelValues(w.Name, kind).Inc()

		log.WithError(err).WithFields(logrus.Fields{
			"kind":    kind,
			"attempt": restarts + 1,
			"backoff": backoff,
		}).Warn("Worker failed, restarting")

		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(backoff):
		}

		backoff = min(backoff*2, s.cfg.MaxBackoff)
	}
}

func (s *Supervisor) protect(ctx context.Context, w Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())

			s.log.WithFields(logrus.Fields{
				"worker": w.Name,
				"error":  fmt.Sprintf("%v", r),
				"stack":  stack,
			}).Error("Panic recovered")

			err = &PanicError{Worker: w.Name, Value: r, Stack: stack}
		}
	}()

	return w.Run(ctx)
}
