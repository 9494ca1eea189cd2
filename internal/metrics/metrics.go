// Package metrics provides the centralized Prometheus registry for the
// crawler and the calibration engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CrawlRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "crawl_requests_total",
		Help:      "Total number of DUPR API requests, by endpoint",
	}, []string{"endpoint"})
	CrawlRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "crawl_retries_total",
		Help:      "Total number of retried DUPR API requests",
	})
	CalibrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "calibrations_total",
		Help:      "Total number of completed calibration runs",
	})
	SimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "simulations_total",
		Help:      "Total number of simulation calls",
	})
	DroppedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "ingest_dropped_rows_total",
		Help:      "Total number of malformed rows dropped during ingestion",
	})
	ExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dupr_insight",
		Name:      "exports_total",
		Help:      "Total number of workbook exports",
	})
)

// Gauge metrics
var (
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dupr_insight",
		Name:      "active_sessions",
		Help:      "Number of live analysis sessions",
	})
	LastFitError = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dupr_insight",
		Name:      "last_fit_error",
		Help:      "Aggregate error of the most recent calibration",
	})
)

// Histogram metrics
var (
	CalibrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dupr_insight",
		Name:      "calibration_duration_seconds",
		Help:      "Duration of calibration grid searches in seconds",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
	CrawlDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dupr_insight",
		Name:      "crawl_duration_seconds",
		Help:      "Duration of full club crawls in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CrawlRequestsTotal)
		registry.MustRegister(CrawlRetriesTotal)
		registry.MustRegister(CalibrationsTotal)
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(DroppedRowsTotal)
		registry.MustRegister(ExportsTotal)

		registry.MustRegister(ActiveSessions)
		registry.MustRegister(LastFitError)

		registry.MustRegister(CalibrationDuration)
		registry.MustRegister(CrawlDuration)
	})
	return registry
}

// GetRegistry returns the global registry, initializing it if necessary.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCrawlRequest increments the API request counter for an endpoint.
func RecordCrawlRequest(endpoint string) {
	CrawlRequestsTotal.WithLabelValues(endpoint).Inc()
}

// RecordCrawlRetry counts one retried API request.
func RecordCrawlRetry() {
	CrawlRetriesTotal.Inc()
}

// RecordCrawl observes a completed club crawl.
func RecordCrawl(durationSeconds float64) {
	CrawlDuration.Observe(durationSeconds)
}

// RecordCalibration observes a completed calibration run.
func RecordCalibration(durationSeconds float64) {
	CalibrationsTotal.Inc()
	CalibrationDuration.Observe(durationSeconds)
}

// RecordSimulation counts one simulation call.
func RecordSimulation() {
	SimulationsTotal.Inc()
}

// RecordExport counts one workbook export.
func RecordExport() {
	ExportsTotal.Inc()
}

// AddDroppedRows counts rows dropped during ingestion.
func AddDroppedRows(n int) {
	if n > 0 {
		DroppedRowsTotal.Add(float64(n))
	}
}

// SetActiveSessions updates the live session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// SetLastFitError records the aggregate error of the latest fit.
func SetLastFitError(err float64) {
	LastFitError.Set(err)
}
