package supervisor

import (
	"fmt"
	"time"
)

// Config holds restart policy settings.
type Config struct {
	MaxRestarts int           // 0 disables restarts
	MinBackoff  time.Duration // First restart delay, doubled per failure
	MaxBackoff  time.Duration
}

// Validate fills in defaults and checks ranges.
func (c *Config) Validate() error {
	if c.MaxRestarts < 0 {
		return fmt.Errorf("max restarts must not be negative, got %d", c.MaxRestarts)
	}

	if c.MinBackoff <= 0 {
		c.MinBackoff = time.Second
	}

	if c.MaxBackoff <= 0 {
		c.MaxBackoff = time.Minute
	}

	if c.MaxBackoff < c.MinBackoff {
		return fmt.Errorf("max backoff %s is below min backoff %s", c.MaxBackoff, c.MinBackoff)
	}

	return nil
}
