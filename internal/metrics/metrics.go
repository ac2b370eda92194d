// Package metrics exposes Prometheus instrumentation for the occupancy service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seat_occupancy_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seat_occupancy_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	occupancyOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seat_occupancy_operations_total",
		Help: "Count of assignment engine operations by operation and result",
	}, []string{"operation", "result"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seat_occupancy_import_rows_total",
		Help: "Count of reconciled spreadsheet rows by outcome",
	}, []string{"outcome"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seat_occupancy_import_duration_seconds",
		Help:    "Duration of reconciliation runs",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveOperation counts an engine operation. result is "ok" or an error kind.
func ObserveOperation(operation, result string) {
	occupancyOperations.WithLabelValues(operation, result).Inc()
}

// ObserveImport records the outcome counts and duration of one reconciliation run.
func ObserveImport(succeeded, failed, conflicts, skipped int, duration time.Duration) {
	importRows.WithLabelValues("succeeded").Add(float64(succeeded))
	importRows.WithLabelValues("failed").Add(float64(failed))
	importRows.WithLabelValues("conflict").Add(float64(conflicts))
	importRows.WithLabelValues("skipped").Add(float64(skipped))
	importDuration.Observe(duration.Seconds())
}
