package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name:   "empty config gets defaults",
			config: &Config{},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, RoleAll, cfg.Role)
				assert.Equal(t, DefaultGroup, cfg.Feed.Group)
				assert.Equal(t, time.Minute, cfg.Feed.StaleAfter)
				assert.Equal(t, HandoffMemory, cfg.Handoff.Type)
				assert.Equal(t, ".", cfg.Output.Directory)
				assert.False(t, cfg.Separated())
			},
		},
		{
			name:   "feed-group is trimmed",
			config: &Config{Feed: FeedConfig{Group: " +pics+aww+ "}},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "pics+aww", cfg.Feed.Group)
			},
		},
		{
			name: "separate roles default to a redis handoff",
			config: &Config{
				Role:  RoleSchedule,
				Redis: RedisConfig{Address: "localhost:6379"},
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.True(t, cfg.Separated())
				assert.Equal(t, HandoffRedis, cfg.Handoff.Type)
				assert.Equal(t, "resampler", cfg.Redis.KeyPrefix)
				assert.Equal(t, 10, cfg.Redis.PoolSize)
				assert.Equal(t, 10*time.Second, cfg.Leader.LockTTL)
				assert.Equal(t, 3*time.Second, cfg.Leader.RenewInterval)
			},
		},
		{
			name: "server defaults when enabled",
			config: &Config{
				Server: ServerConfig{Enabled: true},
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
			},
		},
		{
			name:        "invalid log level",
			config:      &Config{LogLevel: "verbose"},
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name:        "invalid role",
			config:      &Config{Role: "both"},
			expectError: true,
			errorMsg:    "invalid role",
		},
		{
			name:        "separate role with memory handoff",
			config:      &Config{Role: RoleIngest, Handoff: HandoffConfig{Type: HandoffMemory}},
			expectError: true,
			errorMsg:    "needs a redis handoff",
		},
		{
			name:        "redis handoff without address",
			config:      &Config{Handoff: HandoffConfig{Type: HandoffRedis}},
			expectError: true,
			errorMsg:    "redis.address is required",
		},
		{
			name:        "unknown handoff",
			config:      &Config{Handoff: HandoffConfig{Type: "kafka"}},
			expectError: true,
			errorMsg:    "invalid type",
		},
		{
			name:        "batch size above api limit",
			config:      &Config{Scheduler: SchedulerConfig{BatchSize: 250}},
			expectError: true,
			errorMsg:    "batch_size",
		},
		{
			name:        "negative stale threshold",
			config:      &Config{Feed: FeedConfig{StaleAfter: -time.Second}},
			expectError: true,
			errorMsg:    "stale_after",
		},
		{
			name:        "negative restarts",
			config:      &Config{Supervisor: SupervisorConfig{MaxRestarts: -1}},
			expectError: true,
			errorMsg:    "max_restarts",
		},
		{
			name: "renew not shorter than ttl",
			config: &Config{
				Handoff: HandoffConfig{Type: HandoffRedis},
				Redis:   RedisConfig{Address: "localhost:6379"},
				Leader:  LeaderConfig{LockTTL: time.Second, RenewInterval: 2 * time.Second},
			},
			expectError: true,
			errorMsg:    "renew_interval",
		},
		{
			name:        "invalid server port",
			config:      &Config{Server: ServerConfig{Enabled: true, Port: 99999}},
			expectError: true,
			errorMsg:    "invalid server port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectError {
				require.Error(t, err)

				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}

				return
			}

			require.NoError(t, err)

			if tt.validate != nil {
				tt.validate(t, tt.config)
			}
		})
	}
}

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid YAML file",
			yamlContent: `
log_level: debug
role: all
feed:
  group: pics+aww
  stale_after: 90s
reddit:
  client_id: abc
  client_secret: from-file
  username: bot
  password: hunter2
  user_agent: resampler/test
scheduler:
  batch_size: 50
  poll_interval: 500ms
  intervals: [5, 10, 15]
output:
  directory: /data
handoff:
  type: memory
  capacity: 1000
supervisor:
  max_restarts: 3
  min_backoff: 2s
server:
  enabled: true
  port: 9191
`,
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "pics+aww", cfg.Feed.Group)
				assert.Equal(t, 90*time.Second, cfg.Feed.StaleAfter)
				assert.Equal(t, "abc", cfg.Reddit.ClientID)
				assert.Equal(t, "from-file", cfg.Reddit.ClientSecret)
				assert.Equal(t, 50, cfg.Scheduler.BatchSize)
				assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.PollInterval)
				assert.Equal(t, []int{5, 10, 15}, cfg.Scheduler.Intervals)
				assert.Equal(t, "/data", cfg.Output.Directory)
				assert.Equal(t, 1000, cfg.Handoff.Capacity)
				assert.Equal(t, 3, cfg.Supervisor.MaxRestarts)
				assert.Equal(t, 9191, cfg.Server.Port)
				require.NoError(t, cfg.Validate())
			},
		},
		{
			name:        "invalid YAML syntax",
			yamlContent: "invalid: yaml: content:",
			expectError: true,
			errorMsg:    "failed to parse config",
		},
		{
			name:        "empty file",
			yamlContent: "",
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.NotNil(t, cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			err := os.WriteFile(configPath, []byte(tt.yamlContent), 0600)
			require.NoError(t, err)

			cfg, err := Load(configPath)

			if tt.expectError {
				require.Error(t, err)

				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}

				return
			}

			require.NoError(t, err)

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfig_Load_EnvSecrets(t *testing.T) {
	t.Setenv(EnvClientSecret, "env-secret")
	t.Setenv(EnvPassword, "env-password")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("reddit:\n  client_secret: file-secret\n"), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Reddit.ClientSecret)
	assert.Equal(t, "env-password", cfg.Reddit.Password)
}

func TestConfig_Load_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
