// Package server exposes the ops HTTP surface: health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/resampler/internal/config"
	"github.com/ethpandaops/resampler/internal/handlers"
	"github.com/ethpandaops/resampler/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	logger     logrus.FieldLogger
}

// New creates the ops server. stats may be nil when no scheduler runs in this
// process; workers may be nil when nothing is supervised.
func New(
	logger logrus.FieldLogger,
	cfg *config.Config,
	stats handlers.StatsSource,
	workers handlers.WorkerStatus,
) *Server {
	logger = logger.WithField("component", "server")
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health(string(cfg.Role), cfg.Feed.Group, stats, workers))
	logger.WithField("route", "GET /health").Info("Registered route")

	mux.Handle("GET /metrics", promhttp.Handler())
	logger.WithField("route", "GET /metrics").Info("Registered route")

	// Apply middleware chain: Logging → Metrics → Recovery
	handler := middleware.Logging(logger)(mux)
	handler = middleware.Metrics()(handler)
	handler = middleware.Recovery(logger)(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the wrapped mux.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server (blocking call). It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	return s.httpServer.Shutdown(ctx)
}
