package testutil

import (
	"github.com/ethpandaops/resampler/internal/config"
)

// NewTestConfig returns a minimal valid single-process config for testing.
func NewTestConfig() *config.Config {
	cfg := &config.Config{
		Feed: config.FeedConfig{Group: "pics"},
		Reddit: config.RedditConfig{
			ClientID:  "test-client",
			Username:  "test-user",
			Password:  "test-password",
			UserAgent: "resampler/test",
		},
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}
