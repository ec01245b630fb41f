package reddit

import (
	"fmt"
	"time"
)

// Config holds API client settings.
type Config struct {
	ClientID       string
	ClientSecret   string //nolint:gosec // Config field, not a hardcoded secret.
	Username       string
	Password       string //nolint:gosec // Config field, not a hardcoded secret.
	UserAgent      string
	BaseURL        string // OAuth API host, e.g. https://oauth.reddit.com
	TokenURL       string
	RequestTimeout time.Duration
}

const (
	defaultBaseURL  = "https://oauth.reddit.com"
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}

	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}

	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password are required")
	}

	return nil
}
