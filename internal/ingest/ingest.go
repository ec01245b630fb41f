// Package ingest bridges the live feed to the scheduler: it filters backlog,
// writes first-seen records and hands each admitted item its first schedule
// entry.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/handoff"
	"github.com/ethpandaops/resampler/internal/intervals"
	"github.com/ethpandaops/resampler/internal/metrics"
	"github.com/ethpandaops/resampler/internal/pipeline"
	"github.com/ethpandaops/resampler/internal/reddit"
	"github.com/ethpandaops/resampler/internal/schedule"
	"github.com/ethpandaops/resampler/internal/snapshot"
	"github.com/ethpandaops/resampler/internal/wallclock"
)

const workerName = "ingest"

// deletedAuthor is how the API reports removed accounts.
const deletedAuthor = "[deleted]"

// Ingestor consumes the feed and admits fresh items to scheduling.
type Ingestor struct {
	log     logrus.FieldLogger
	cfg     Config
	table   *intervals.Table
	stream  reddit.Stream
	authors reddit.Authors
	sink    snapshot.Sink
	out     handoff.Channel
	clock   wallclock.Clock
}

// New creates an ingestor.
func New(
	log logrus.FieldLogger,
	cfg Config,
	table *intervals.Table,
	stream reddit.Stream,
	authors reddit.Authors,
	sink snapshot.Sink,
	out handoff.Channel,
	clock wallclock.Clock,
) *Ingestor {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}

	return &Ingestor{
		log:     log.WithFields(logrus.Fields{"component": workerName, "group": cfg.Group}),
		cfg:     cfg,
		table:   table,
		stream:  stream,
		authors: authors,
		sink:    sink,
		out:     out,
		clock:   clock,
	}
}

// Run consumes the feed until ctx is cancelled or a fatal error occurs. It
// returns nil on cancellation.
func (i *Ingestor) Run(ctx context.Context) error {
	i.log.WithField("stale_after", i.cfg.StaleAfter).Info("Ingestor started")

	for {
		sub, err := i.stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				i.log.Info("Ingestor stopped")

				return nil
			}

			err = pipeline.FeedError(workerName, err)
			i.log.WithError(err).Error("Feed failed")

			return err
		}

		if err := i.Handle(ctx, sub); err != nil {
			if ctx.Err() != nil {
				i.log.Info("Ingestor stopped")

				return nil
			}

			i.log.WithError(err).WithFields(logrus.Fields{
				"id":   sub.ID,
				"kind": pipeline.KindOf(err),
			}).Error("Failed to admit submission")

			return err
		}
	}
}

// Handle processes one announced submission.
func (i *Ingestor) Handle(ctx context.Context, sub *reddit.Submission) error {
	now := i.clock.Now()
	created := sub.Created()

	log := i.log.WithFields(logrus.Fields{
		"id":      sub.ID,
		"created": created,
	})

	if created.Add(i.cfg.StaleAfter).Before(now) {
		metrics.IngestStale.Inc()
		log.WithField("age", now.Sub(created)).Debug("Discarding backlog submission")

		return nil
	}

	karma, err := i.karma(ctx, sub.Author)
	if err != nil {
		return pipeline.FeedError(workerName, err)
	}

	if err := i.sink.Append(ctx, snapshot.FromSubmission(sub, karma, now, 0)); err != nil {
		return pipeline.SinkError(workerName, err)
	}

	metrics.RecordsWritten.WithLabelValues(string(snapshot.FirstSeen)).Inc()

	entry := schedule.First(i.table, now, sub.ID, sub.Fullname())
	if err := i.out.Send(ctx, entry); err != nil {
		return pipeline.HandoffError(workerName, fmt.Errorf("send %s: %w", sub.ID, err))
	}

	metrics.IngestAdmitted.Inc()
	log.WithField("due_at", entry.DueAt).Debug("Admitted submission")

	return nil
}

func (i *Ingestor) karma(ctx context.Context, author string) (*reddit.Karma, error) {
	if author == "" || author == deletedAuthor {
		return nil, nil //nolint:nilnil // no author, no karma
	}

	karma, err := i.authors.Karma(ctx, author)
	if errors.Is(err, reddit.ErrNotFound) {
		i.log.WithField("author", author).Debug("Author unavailable, leaving karma empty")

		return nil, nil //nolint:nilnil // unavailable author, no karma
	}

	if err != nil {
		return nil, fmt.Errorf("author karma: %w", err)
	}

	return karma, nil
}
