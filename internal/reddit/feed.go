package reddit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Compile-time interface compliance check.
var _ Stream = (*Feed)(nil)

// FeedConfig tunes the /new poller.
type FeedConfig struct {
	Group      string        // Feed-group, e.g. "pics+aww"
	Limit      int           // Listing page size (max 100)
	SeenSize   int           // How many recent ids to remember for de-duplication
	MinBackoff time.Duration // Wait after an empty poll
	MaxBackoff time.Duration // Upper bound of the doubling wait
}

func (c *FeedConfig) setDefaults() {
	if c.Limit <= 0 || c.Limit > 100 {
		c.Limit = 100
	}

	if c.SeenSize <= 0 {
		c.SeenSize = 301
	}

	if c.MinBackoff <= 0 {
		c.MinBackoff = time.Second
	}

	if c.MaxBackoff < c.MinBackoff {
		c.MaxBackoff = 16 * c.MinBackoff
	}
}

// Feed polls a feed-group's /new listing and yields each submission once,
// oldest first. The first poll returns the current backlog.
type Feed struct {
	log     logrus.FieldLogger
	client  *Client
	cfg     FeedConfig
	seen    *seenSet
	pending []Submission
	backoff time.Duration
}

// NewFeed creates a poller for cfg.Group.
func NewFeed(log logrus.FieldLogger, client *Client, cfg FeedConfig) *Feed {
	cfg.setDefaults()

	return &Feed{
		log:     log.WithFields(logrus.Fields{"component": "feed", "group": cfg.Group}),
		client:  client,
		cfg:     cfg,
		seen:    newSeenSet(cfg.SeenSize),
		backoff: cfg.MinBackoff,
	}
}

// Next blocks until an unseen submission is available or ctx is done.
func (f *Feed) Next(ctx context.Context) (*Submission, error) {
	for len(f.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fresh, err := f.poll(ctx)
		if err != nil {
			return nil, err
		}

		if fresh > 0 {
			f.backoff = f.cfg.MinBackoff

			continue
		}

		f.log.WithField("backoff", f.backoff).Trace("No new submissions")

		timer := time.NewTimer(f.backoff)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, ctx.Err()
		case <-timer.C:
		}

		f.backoff = min(f.backoff*2, f.cfg.MaxBackoff)
	}

	next := f.pending[0]
	f.pending = f.pending[1:]

	return &next, nil
}

func (f *Feed) poll(ctx context.Context) (int, error) {
	subs, err := f.client.newest(ctx, f.cfg.Group, f.cfg.Limit)
	if err != nil {
		return 0, fmt.Errorf("poll feed: %w", err)
	}

	fresh := 0

	// Listings are newest first; queue oldest first.
	for i := len(subs) - 1; i >= 0; i-- {
		if !f.seen.add(subs[i].ID) {
			continue
		}

		f.pending = append(f.pending, subs[i])
		fresh++
	}

	return fresh, nil
}

// seenSet remembers the most recent ids up to a fixed size.
type seenSet struct {
	ids   map[string]struct{}
	order []string
	size  int
}

func newSeenSet(size int) *seenSet {
	return &seenSet{
		ids:   make(map[string]struct{}, size),
		order: make([]string, 0, size),
		size:  size,
	}
}

// add records id and reports whether it was new.
func (s *seenSet) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}

	if len(s.order) >= s.size {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}

	s.ids[id] = struct{}{}
	s.order = append(s.order, id)

	return true
}
