// Package metrics declares the Prometheus collectors exported at /metrics.
//
// Ingestion:
//   - quiz_events_ingested_total: appended events (counter), label event_type
//   - quiz_event_ingest_failures_total: rejected or failed events (counter), label reason
//
// Reporting:
//   - quiz_stats_requests_total: aggregation requests (counter), label outcome
//   - quiz_stats_rows_scanned: rows fetched per aggregation (histogram)
//   - quiz_stats_duration_seconds: fetch plus fold latency (histogram)
//
// HTTP:
//   - quiz_http_requests_total: served requests (counter), labels route, status
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ReasonValidation = "validation"
	ReasonSink       = "sink"

	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeUpstream   = "upstream"
)

var (
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_events_ingested_total",
			Help: "Total number of quiz events appended to the event log",
		},
		[]string{"event_type"},
	)

	IngestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_event_ingest_failures_total",
			Help: "Total number of quiz events that were rejected or could not be appended",
		},
		[]string{"reason"},
	)

	StatsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_stats_requests_total",
			Help: "Total number of statistics aggregation requests",
		},
		[]string{"outcome"},
	)

	StatsRowsScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_stats_rows_scanned",
			Help:    "Number of raw event rows folded per aggregation",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	StatsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_stats_duration_seconds",
			Help:    "Duration of statistics aggregation including the event log read",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "status"},
	)
)

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(route string, status int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
