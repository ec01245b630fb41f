package scheduler

import (
	"fmt"
	"time"

	"github.com/ethpandaops/resampler/internal/reddit"
)

const (
	defaultPollInterval = time.Second
	defaultDrainLimit   = 1000
)

// Config holds scheduler settings.
type Config struct {
	Group        string
	BatchSize    int           // Items per bulk lookup, at most reddit.MaxInfoBatch
	PollInterval time.Duration // Longest the loop sleeps before re-checking
	DrainLimit   int           // Handoff entries moved into the queue per iteration
}

// Validate fills in defaults and checks ranges.
func (c *Config) Validate() error {
	if c.BatchSize == 0 {
		c.BatchSize = reddit.MaxInfoBatch
	}

	if c.BatchSize < 0 || c.BatchSize > reddit.MaxInfoBatch {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", reddit.MaxInfoBatch, c.BatchSize)
	}

	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}

	if c.DrainLimit == 0 {
		c.DrainLimit = defaultDrainLimit
	}

	if c.DrainLimit < 0 {
		return fmt.Errorf("drain limit must be positive, got %d", c.DrainLimit)
	}

	return nil
}
