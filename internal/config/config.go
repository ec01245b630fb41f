//nolint:tagliatelle // superior snake-case yo.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultGroup is the feed-group observed when none is configured.
const DefaultGroup = "AskReddit+Pics+Gifs+Videos+WorldNews+Funny+Aww+gaming"

// Environment variables that override secrets from the config file.
const (
	EnvClientSecret = "RESAMPLER_REDDIT_CLIENT_SECRET" //nolint:gosec // Variable name, not a secret.
	EnvPassword     = "RESAMPLER_REDDIT_PASSWORD"      //nolint:gosec // Variable name, not a secret.
)

// Role selects which workers a process runs.
type Role string

const (
	// RoleAll runs the ingestor and scheduler in one process.
	RoleAll Role = "all"
	// RoleIngest runs only the ingestor.
	RoleIngest Role = "ingest"
	// RoleSchedule runs only the scheduler.
	RoleSchedule Role = "schedule"
)

// Handoff channel types.
const (
	HandoffMemory = "memory"
	HandoffRedis  = "redis"
)

// Config represents the complete application configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Role       Role             `yaml:"role"`
	Feed       FeedConfig       `yaml:"feed"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Output     OutputConfig     `yaml:"output"`
	Handoff    HandoffConfig    `yaml:"handoff"`
	Redis      RedisConfig      `yaml:"redis"`
	Leader     LeaderConfig     `yaml:"leader"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Server     ServerConfig     `yaml:"server"`
}

// FeedConfig describes the observed feed-group and its poller.
type FeedConfig struct {
	Group      string        `yaml:"group"`
	Limit      int           `yaml:"limit"`       // Listing page size
	SeenSize   int           `yaml:"seen_size"`   // Recent ids remembered for de-duplication
	StaleAfter time.Duration `yaml:"stale_after"` // Backlog threshold
	MinBackoff time.Duration `yaml:"min_backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// RedditConfig holds API credentials.
type RedditConfig struct {
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"` //nolint:gosec // Config field, not a hardcoded secret.
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"` //nolint:gosec // Config field, not a hardcoded secret.
	UserAgent      string        `yaml:"user_agent"`
	BaseURL        string        `yaml:"base_url"`
	TokenURL       string        `yaml:"token_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SchedulerConfig holds resample loop settings.
type SchedulerConfig struct {
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	DrainLimit   int           `yaml:"drain_limit"`
	Intervals    []int         `yaml:"intervals"` // Minute offsets, empty for the built-in table
}

// OutputConfig holds snapshot log settings.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// HandoffConfig selects the ingestor to scheduler channel.
type HandoffConfig struct {
	Type     string `yaml:"type"`     // "memory" or "redis"
	Capacity int    `yaml:"capacity"` // Memory only, 0 is unbounded
}

// RedisConfig holds Redis client configuration.
type RedisConfig struct {
	Address      string        `yaml:"address"`
	Password     string        `yaml:"password"` //nolint:gosec // Config field, not a hardcoded secret.
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
	KeyPrefix    string        `yaml:"key_prefix"`
}

// LeaderConfig holds scheduler lock configuration.
type LeaderConfig struct {
	LockTTL       time.Duration `yaml:"lock_ttl"`
	RenewInterval time.Duration `yaml:"renew_interval"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// SupervisorConfig holds worker restart policy.
type SupervisorConfig struct {
	MaxRestarts int           `yaml:"max_restarts"`
	MinBackoff  time.Duration `yaml:"min_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
}

// ServerConfig contains ops HTTP server settings.
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Load loads configuration from a YAML file and applies environment
// overrides.
func Load(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv()

	return &cfg, nil
}

// ApplyEnv replaces secrets with their environment overrides when set.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvClientSecret); ok {
		c.Reddit.ClientSecret = v
	}

	if v, ok := os.LookupEnv(EnvPassword); ok {
		c.Reddit.Password = v
	}
}

// Separated reports whether the workers run in different processes.
func (c *Config) Separated() bool {
	return c.Role == RoleIngest || c.Role == RoleSchedule
}

// Validate sets defaults and validates the configuration.
func (c *Config) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	switch c.Role {
	case "":
		c.Role = RoleAll
	case RoleAll, RoleIngest, RoleSchedule:
	default:
		return fmt.Errorf("invalid role: %s", c.Role)
	}

	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}

	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}

	if err := c.validateHandoff(); err != nil {
		return fmt.Errorf("handoff: %w", err)
	}

	if c.Supervisor.MaxRestarts < 0 {
		return fmt.Errorf("supervisor.max_restarts must not be negative")
	}

	if c.Server.Enabled {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	return nil
}

// Validate sets feed defaults.
func (c *FeedConfig) Validate() error {
	c.Group = strings.Trim(strings.TrimSpace(c.Group), "+")
	if c.Group == "" {
		c.Group = DefaultGroup
	}

	if strings.ContainsAny(c.Group, " /") {
		return fmt.Errorf("invalid feed-group: %q", c.Group)
	}

	if c.StaleAfter == 0 {
		c.StaleAfter = time.Minute
	}

	if c.StaleAfter < 0 {
		return fmt.Errorf("stale_after must be positive")
	}

	if c.Limit < 0 || c.Limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100, got %d", c.Limit)
	}

	return nil
}

// Validate checks scheduler ranges. Remaining defaults belong to the
// scheduler package.
func (c *SchedulerConfig) Validate() error {
	if c.BatchSize < 0 || c.BatchSize > 100 {
		return fmt.Errorf("batch_size must be between 1 and 100, got %d", c.BatchSize)
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if c.DrainLimit < 0 {
		return fmt.Errorf("drain_limit must be positive")
	}

	return nil
}

func (c *Config) validateHandoff() error {
	if c.Handoff.Type == "" {
		c.Handoff.Type = HandoffMemory
		if c.Separated() {
			c.Handoff.Type = HandoffRedis
		}
	}

	switch c.Handoff.Type {
	case HandoffMemory:
		if c.Separated() {
			return fmt.Errorf("role %s needs a redis handoff", c.Role)
		}

		if c.Handoff.Capacity < 0 {
			return fmt.Errorf("capacity must not be negative")
		}

		return nil
	case HandoffRedis:
		return c.validateRedis()
	default:
		return fmt.Errorf("invalid type: %s", c.Handoff.Type)
	}
}

func (c *Config) validateRedis() error {
	if c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}

	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "resampler"
	}

	if c.Leader.LockTTL == 0 {
		c.Leader.LockTTL = 10 * time.Second
	}

	if c.Leader.RenewInterval == 0 {
		c.Leader.RenewInterval = 3 * time.Second
	}

	if c.Leader.RetryInterval == 0 {
		c.Leader.RetryInterval = 2 * time.Second
	}

	if c.Leader.RenewInterval >= c.Leader.LockTTL {
		return fmt.Errorf("leader.renew_interval must be shorter than leader.lock_ttl")
	}

	return nil
}

// Validate sets server defaults and checks ranges.
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}

	if c.Port == 0 {
		c.Port = 9090
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}

	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}

	return nil
}
