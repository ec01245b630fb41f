package redis

import "time"

// Config holds Redis connection settings.
type Config struct {
	Address      string
	Password     string //nolint:gosec // Config field, not a hardcoded secret.
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	KeyPrefix    string // Namespace prepended to every resampler key
}

// Key joins the configured prefix and parts into a Redis key.
func (c Config) Key(parts ...string) string {
	key := c.KeyPrefix

	for _, p := range parts {
		if key != "" {
			key += ":"
		}

		key += p
	}

	return key
}
