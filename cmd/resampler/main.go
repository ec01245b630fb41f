package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/config"
	"github.com/ethpandaops/resampler/internal/handlers"
	"github.com/ethpandaops/resampler/internal/handoff"
	"github.com/ethpandaops/resampler/internal/ingest"
	"github.com/ethpandaops/resampler/internal/intervals"
	"github.com/ethpandaops/resampler/internal/leader"
	"github.com/ethpandaops/resampler/internal/reddit"
	"github.com/ethpandaops/resampler/internal/redis"
	"github.com/ethpandaops/resampler/internal/scheduler"
	"github.com/ethpandaops/resampler/internal/server"
	"github.com/ethpandaops/resampler/internal/snapshot"
	"github.com/ethpandaops/resampler/internal/supervisor"
	"github.com/ethpandaops/resampler/internal/version"
	"github.com/ethpandaops/resampler/internal/wallclock"
)

// infrastructure holds core infrastructure components.
type infrastructure struct {
	redisClient redis.Client // nil with an in-process handoff
	elector     leader.Elector
	channel     handoff.Channel
}

// services holds the workers of this process and the logs they write.
type services struct {
	ingestor  *ingest.Ingestor
	scheduler *scheduler.Scheduler
	sinks     []snapshot.Sink
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	feedGroup := flag.String("feed", "", "Feed-group to observe, e.g. pics+aww (overrides feed.group)")
	flag.Parse()

	// Setup logger
	logger := setupLogger()

	// Create application context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load and validate configuration
	cfg, err := loadAndValidateConfig(logger, *configPath, *feedGroup)
	if err != nil {
		logger.WithError(err).Fatal("Configuration error")
	}

	// Setup infrastructure (handoff, redis, leader election)
	infra, err := setupInfrastructure(ctx, logger, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Infrastructure setup failed")
	}

	// Setup workers (ingestor, scheduler) and their logs
	svc, err := setupServices(logger, cfg, infra, wallclock.System{})
	if err != nil {
		logger.WithError(err).Fatal("Service setup failed")
	}

	// Supervise workers so one failing never stops the other
	sup, err := setupSupervisor(logger, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Supervisor setup failed")
	}

	// Start ops server
	srv := startServer(cfg, logger, svc, sup)

	// Cancel on interrupt; workers return once they observe it
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := runWorkers(ctx, sup, svc)

	cancel()

	// Perform graceful shutdown
	shutdownGracefully(logger, cfg, srv, svc, infra)

	if runErr != nil {
		logger.WithError(runErr).Error("Worker failed")
		os.Exit(1)
	}
}

// setupLogger creates and configures the application logger.
func setupLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})

	logger.WithFields(logrus.Fields{
		"version":    version.Short(),
		"git_commit": version.GitCommit,
		"build_date": version.BuildDate,
	}).Info("Starting...")

	return logger
}

// loadAndValidateConfig loads the configuration file, applies flag overrides
// and validates it.
func loadAndValidateConfig(logger *logrus.Logger, configPath, feedGroup string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if feedGroup != "" {
		cfg.Feed.Group = feedGroup
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// Set log level from config
	level, parseErr := logrus.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, using info")

		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	logger.WithFields(logrus.Fields{
		"role":      cfg.Role,
		"group":     cfg.Feed.Group,
		"handoff":   cfg.Handoff.Type,
		"output":    cfg.Output.Directory,
		"log_level": cfg.LogLevel,
	}).Info("Configuration loaded")

	return cfg, nil
}

// setupInfrastructure builds the handoff channel. A Redis handoff also brings
// up the Redis client and, for processes that schedule, the feed-group lock.
func setupInfrastructure(
	ctx context.Context,
	logger *logrus.Logger,
	cfg *config.Config,
) (*infrastructure, error) {
	if cfg.Handoff.Type == config.HandoffMemory {
		return &infrastructure{
			elector: leader.Always{},
			channel: handoff.NewMemory(cfg.Handoff.Capacity),
		}, nil
	}

	redisCfg := redis.Config{
		Address:      cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	}

	// Initialize Redis client
	redisClient := redis.NewClient(logger, redisCfg)

	if err := redisClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start Redis client: %w", err)
	}

	infra := &infrastructure{
		redisClient: redisClient,
		elector:     leader.Always{},
		channel:     handoff.NewRedis(logger, redisClient, redisCfg.Key("handoff", cfg.Feed.Group)),
	}

	if cfg.Role == config.RoleIngest {
		return infra, nil
	}

	// Initialize leader election
	elector := leader.NewElector(logger, leader.Config{
		LockKey:       redisCfg.Key("leader", cfg.Feed.Group),
		LockTTL:       cfg.Leader.LockTTL,
		RenewInterval: cfg.Leader.RenewInterval,
		RetryInterval: cfg.Leader.RetryInterval,
	}, redisClient)

	if err := elector.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start leader election: %w", err)
	}

	infra.elector = elector

	return infra, nil
}

// setupServices opens the snapshot logs and builds the workers this role
// runs. Log files are named after the feed-group and the process start.
func setupServices(
	logger *logrus.Logger,
	cfg *config.Config,
	infra *infrastructure,
	clock wallclock.Clock,
) (*services, error) {
	svc := &services{}
	started := clock.Now()

	table, err := intervalTable(cfg.Scheduler.Intervals)
	if err != nil {
		return nil, fmt.Errorf("interval table: %w", err)
	}

	userAgent := cfg.Reddit.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent(cfg.Reddit.Username)
	}

	client, err := reddit.New(logger, reddit.Config{
		ClientID:       cfg.Reddit.ClientID,
		ClientSecret:   cfg.Reddit.ClientSecret,
		Username:       cfg.Reddit.Username,
		Password:       cfg.Reddit.Password,
		UserAgent:      userAgent,
		BaseURL:        cfg.Reddit.BaseURL,
		TokenURL:       cfg.Reddit.TokenURL,
		RequestTimeout: cfg.Reddit.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}

	openLog := func(log snapshot.Log) (snapshot.Sink, error) {
		path := filepath.Join(cfg.Output.Directory, snapshot.FileName(log, cfg.Feed.Group, started))

		sink, err := snapshot.OpenCSV(logger, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s log: %w", log, err)
		}

		svc.sinks = append(svc.sinks, sink)

		return sink, nil
	}

	if cfg.Role != config.RoleSchedule {
		sink, err := openLog(snapshot.FirstSeen)
		if err != nil {
			return nil, err
		}

		feed := reddit.NewFeed(logger, client, reddit.FeedConfig{
			Group:      cfg.Feed.Group,
			Limit:      cfg.Feed.Limit,
			SeenSize:   cfg.Feed.SeenSize,
			MinBackoff: cfg.Feed.MinBackoff,
			MaxBackoff: cfg.Feed.MaxBackoff,
		})

		svc.ingestor = ingest.New(logger, ingest.Config{
			Group:      cfg.Feed.Group,
			StaleAfter: cfg.Feed.StaleAfter,
		}, table, feed, client, sink, infra.channel, clock)
	}

	if cfg.Role != config.RoleIngest {
		sink, err := openLog(snapshot.Resample)
		if err != nil {
			return nil, err
		}

		schedCfg := scheduler.Config{
			Group:        cfg.Feed.Group,
			BatchSize:    cfg.Scheduler.BatchSize,
			PollInterval: cfg.Scheduler.PollInterval,
			DrainLimit:   cfg.Scheduler.DrainLimit,
		}

		if err := schedCfg.Validate(); err != nil {
			return nil, fmt.Errorf("scheduler config: %w", err)
		}

		svc.scheduler = scheduler.New(logger, schedCfg, table, client, sink, infra.channel, infra.elector, clock)
	}

	logger.WithFields(logrus.Fields{
		"intervals": table.Count(),
		"last":      table.Minutes(table.Count() - 1),
	}).Info("Workers ready")

	return svc, nil
}

// intervalTable returns the configured table, or the built-in one.
func intervalTable(minutes []int) (*intervals.Table, error) {
	if len(minutes) == 0 {
		return intervals.Default(), nil
	}

	return intervals.New(minutes...)
}

// startServer creates and starts the ops HTTP server when enabled.
func startServer(
	cfg *config.Config,
	logger *logrus.Logger,
	svc *services,
	sup *supervisor.Supervisor,
) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}

	var stats handlers.StatsSource
	if svc.scheduler != nil {
		stats = svc.scheduler
	}

	srv := server.New(logger, cfg, stats, sup)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return srv
}

// setupSupervisor builds the restart policy shared by all workers.
func setupSupervisor(logger *logrus.Logger, cfg *config.Config) (*supervisor.Supervisor, error) {
	supCfg := supervisor.Config{
		MaxRestarts: cfg.Supervisor.MaxRestarts,
		MinBackoff:  cfg.Supervisor.MinBackoff,
		MaxBackoff:  cfg.Supervisor.MaxBackoff,
	}

	if err := supCfg.Validate(); err != nil {
		return nil, fmt.Errorf("supervisor config: %w", err)
	}

	return supervisor.New(logger, supCfg, wallclock.System{}), nil
}

// runWorkers runs this role's workers under the supervisor. It returns once
// ctx is cancelled, or early when every worker has stopped for good.
func runWorkers(ctx context.Context, sup *supervisor.Supervisor, svc *services) error {
	workers := make([]supervisor.Worker, 0, 2)

	if svc.ingestor != nil {
		workers = append(workers, supervisor.Worker{Name: "ingest", Run: svc.ingestor.Run})
	}

	if svc.scheduler != nil {
		workers = append(workers, supervisor.Worker{Name: "scheduler", Run: svc.scheduler.Run})
	}

	return sup.RunAll(ctx, workers...)
}

// shutdownGracefully releases resources once the workers have returned.
// Shutdown order:
// 1. HTTP server (stop accepting requests).
// 2. Snapshot logs (flush and close files).
// 3. Handoff channel (reject late sends).
// 4. Leader election (release leadership lock).
// 5. Redis client (close connections).
func shutdownGracefully(
	logger *logrus.Logger,
	cfg *config.Config,
	srv *server.Server,
	svc *services,
	infra *infrastructure,
) {
	logger.Info("Initiating graceful shutdown...")

	// Stop HTTP server
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	// Close snapshot logs
	for _, sink := range svc.sinks {
		if err := sink.Close(); err != nil {
			logger.WithError(err).Error("Error closing snapshot log")
		}
	}

	if mem, ok := infra.channel.(*handoff.Memory); ok {
		mem.Close()
	}

	// Stop leader election (releases lock)
	if err := infra.elector.Stop(); err != nil {
		logger.WithError(err).Error("Error stopping leader election")
	}

	// Stop Redis client (closes connections)
	if infra.redisClient != nil {
		if err := infra.redisClient.Stop(); err != nil {
			logger.WithError(err).Error("Error stopping Redis client")
		}
	}

	logger.Info("Resampler stopped gracefully")
}
