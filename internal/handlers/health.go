package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ethpandaops/resampler/internal/scheduler"
	"github.com/ethpandaops/resampler/internal/version"
)

// StatsSource exposes scheduler progress. It is nil in ingest-only processes.
type StatsSource interface {
	Stats() scheduler.Stats
}

// WorkerStatus reports workers that stopped for good.
type WorkerStatus interface {
	Failed() []string
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Role      string           `json:"role"`
	Group     string           `json:"group"`
	Failed    []string         `json:"failed_workers,omitempty"`
	Scheduler *scheduler.Stats `json:"scheduler,omitempty"`
}

// Health returns an HTTP handler for health check endpoint. The status is
// "degraded" once any worker has stopped for good.
func Health(role, group string, stats StatsSource, workers WorkerStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response := HealthResponse{
			Status:  "healthy",
			Version: version.Short(),
			Role:    role,
			Group:   group,
		}

		if workers != nil {
			if failed := workers.Failed(); len(failed) > 0 {
				response.Status = "degraded"
				response.Failed = failed
			}
		}

		if stats != nil {
			s := stats.Stats()
			response.Scheduler = &s
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)

			return
		}
	}
}
