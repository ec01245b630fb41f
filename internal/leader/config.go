package leader

import "time"

// Config holds scheduler lock settings. LockKey is normally scoped to the
// feed-group so each group has exactly one draining scheduler.
type Config struct {
	LockKey       string
	LockTTL       time.Duration
	RenewInterval time.Duration
	RetryInterval time.Duration
}
