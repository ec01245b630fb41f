// Package metrics holds the Prometheus collectors of the ingest and
// scheduler workers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resampler"

var (
	// IngestAdmitted counts items admitted to scheduling.
	IngestAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_admitted_total",
		Help:      "Items written to the first-seen log and handed to the scheduler",
	})

	// IngestStale counts backlog items discarded by the freshness filter.
	IngestStale = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_stale_total",
		Help:      "Items discarded because they were created too long before being announced",
	})

	// RecordsWritten counts appended records per log.
	RecordsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Sample records appended, by log",
		},
		[]string{"log"},
	)

	// Batches counts bulk lookups by outcome.
	Batches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Bulk lookups dispatched, by outcome",
		},
		[]string{"outcome"},
	)

	// BatchSize observes the number of items per bulk lookup.
	BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_size",
		Help:      "Items per bulk lookup",
		Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
	})

	// LookupDuration observes bulk lookup latency.
	LookupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_duration_seconds",
		Help:      "Bulk lookup latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// DispatchLag observes how late a batch's oldest entry was dispatched.
	DispatchLag = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_lag_seconds",
		Help:      "Delay between the earliest due time in a batch and its dispatch",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
	})

	// ItemsRetired counts items leaving the schedule, by reason.
	ItemsRetired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_retired_total",
			Help:      "Items whose schedule ended, by reason",
		},
		[]string{"reason"},
	)

	// QueueDepth tracks pending schedule entries.
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Schedule entries pending in the resample queue",
	})

	// WorkerRestarts counts supervisor restarts per worker.
	WorkerRestarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Worker restarts after a fatal error, by worker and error kind",
		},
		[]string{"worker", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		IngestAdmitted,
		IngestStale,
		RecordsWritten,
		Batches,
		BatchSize,
		LookupDuration,
		DispatchLag,
		ItemsRetired,
		QueueDepth,
		WorkerRestarts,
	)
}
