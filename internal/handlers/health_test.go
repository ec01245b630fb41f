package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/resampler/internal/scheduler"
)

type fixedStats scheduler.Stats

func (f fixedStats) Stats() scheduler.Stats { return scheduler.Stats(f) }

type failedWorkers []string

func (f failedWorkers) Failed() []string { return f }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		stats      StatsSource
		workers    WorkerStatus
		wantStats  bool
		wantStatus string
		wantFailed []string
	}{
		{name: "ingest only", wantStatus: "healthy"},
		{
			name:       "with scheduler",
			stats:      fixedStats{Pending: 3, Batches: 2, Written: 7},
			workers:    failedWorkers{},
			wantStats:  true,
			wantStatus: "healthy",
		},
		{
			name:       "ingestor stopped",
			stats:      fixedStats{Pending: 3, Batches: 2, Written: 7},
			workers:    failedWorkers{"ingest"},
			wantStats:  true,
			wantStatus: "degraded",
			wantFailed: []string{"ingest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Health("all", "pics", tt.stats, tt.workers)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantFailed, resp.Failed)
			assert.Equal(t, "pics", resp.Group)

			if !tt.wantStats {
				assert.Nil(t, resp.Scheduler)

				return
			}

			require.NotNil(t, resp.Scheduler)
			assert.Equal(t, 3, resp.Scheduler.Pending)
			assert.Equal(t, uint64(7), resp.Scheduler.Written)
		})
	}
}
