// Package metrics holds the Prometheus collectors for sync runs and the
// decorators that feed them. refsync is a short-lived CLI, so metrics are
// exported by writing a textfile-collector file after each run rather than
// by serving /metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Registry holds every refsync collector. It is separate from the default
// registry so textfile output carries no Go runtime series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Source metrics
	SourceRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refsync_source_requests_total",
			Help: "Total number of source requests by outcome",
		},
		[]string{"source", "operation", "outcome"}, // outcome: success, rate_limited, error
	)

	SourceRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refsync_source_request_duration_seconds",
			Help:    "Duration of source requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "operation"},
	)

	// Sink metrics
	SinkBatches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refsync_sink_batches_total",
			Help: "Total number of upsert batches by outcome",
		},
		[]string{"outcome"},
	)

	SinkBatchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refsync_sink_batch_duration_seconds",
			Help:    "Duration of upsert batch transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecordsUpserted = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "refsync_records_upserted_total",
			Help: "Records inserted or changed by the sink",
		},
	)

	// Run metrics
	RecordsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refsync_records_total",
			Help: "Record count reported by the source at run start",
		},
	)

	RecordsProcessed = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "refsync_records_processed_total",
			Help: "Records fetched and processed, including skipped ones",
		},
	)

	SyncRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refsync_sync_runs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"outcome"}, // success, failure
	)

	SyncDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refsync_sync_duration_seconds",
			Help: "Duration of the last sync run in seconds",
		},
	)

	LastSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "refsync_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync run",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "refsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refsync_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordRun records the outcome of a sync run.
func RecordRun(err error, duration time.Duration, finished time.Time) {
	SyncDuration.Set(duration.Seconds())
	if err != nil {
		SyncRuns.WithLabelValues("failure").Inc()
		return
	}
	SyncRuns.WithLabelValues("success").Inc()
	LastSuccess.Set(float64(finished.Unix()))
}

// BreakerStateChanged records a circuit breaker transition.
func BreakerStateChanged(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// WriteTextfile writes all refsync metrics to path in the node exporter
// textfile-collector format. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
