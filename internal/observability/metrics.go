package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	ingestionsTotal         *prometheus.CounterVec
	ingestionRowsTotal      *prometheus.CounterVec
	ingestionWarningsTotal  *prometheus.CounterVec
	ingestionLatencySeconds *prometheus.HistogramVec
	exportsTotal            *prometheus.CounterVec
	eventsPublishedTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ingestionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ingestions_total",
			Help: "Spreadsheet uploads processed, by kind and outcome.",
		}, []string{"kind", "outcome"})

		ingestionRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ingestion_records_total",
			Help: "Records written by spreadsheet uploads.",
		}, []string{"kind"})

		ingestionWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ingestion_warnings_total",
			Help: "Diagnostics raised while parsing uploads.",
		}, []string{"kind"})

		ingestionLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_ingestion_latency_seconds",
			Help:    "Time spent parsing and storing an upload.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"kind"})

		exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_exports_total",
			Help: "Exports generated, by format.",
		}, []string{"format"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_events_published_total",
			Help: "Ingestion events published to NATS, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			ingestionsTotal, ingestionRowsTotal, ingestionWarningsTotal, ingestionLatencySeconds,
			exportsTotal, eventsPublishedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Ingestions counts processed uploads.
func Ingestions() *prometheus.CounterVec {
	RegisterMetrics()
	return ingestionsTotal
}

// IngestionRecords counts stored records.
func IngestionRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return ingestionRowsTotal
}

// IngestionWarnings counts parse diagnostics.
func IngestionWarnings() *prometheus.CounterVec {
	RegisterMetrics()
	return ingestionWarningsTotal
}

// IngestionLatency exposes the upload processing histogram.
func IngestionLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return ingestionLatencySeconds
}

// Exports counts generated exports.
func Exports() *prometheus.CounterVec {
	RegisterMetrics()
	return exportsTotal
}

// EventsPublished counts NATS publish attempts.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
