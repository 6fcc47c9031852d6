// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipemanager"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpActiveRequests  prometheus.Gauge

	// Business metrics
	recipesCreatedTotal  prometheus.Counter
	usersRegisteredTotal prometheus.Counter
	contactMessagesTotal prometheus.Counter

	// Importer metrics
	importRunsTotal    *prometheus.CounterVec
	importedItemsTotal *prometheus.CounterVec
	importRunDuration  prometheus.Histogram
	importErrorsTotal  prometheus.Counter
}

// NewMetrics creates the collectors on a dedicated registry that also
// carries the Go runtime and process collectors
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpActiveRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Number of active HTTP requests",
			},
		),

		recipesCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_created_total",
				Help:      "Total number of recipes created",
			},
		),
		usersRegisteredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "users_registered_total",
				Help:      "Total number of users registered",
			},
		),
		contactMessagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contact_messages_total",
				Help:      "Total number of contact form submissions",
			},
		),

		importRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_runs_total",
				Help:      "Total number of TheMealDB import runs",
			},
			[]string{"outcome"},
		),
		importedItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imported_items_total",
				Help:      "Total number of recipes and ingredients imported",
			},
			[]string{"kind"},
		),
		importRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_run_duration_seconds",
				Help:      "Duration of TheMealDB import runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
		importErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_row_errors_total",
				Help:      "Total number of rows skipped by the importer",
			},
		),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpActiveRequests,
		m.recipesCreatedTotal,
		m.usersRegisteredTotal,
		m.contactMessagesTotal,
		m.importRunsTotal,
		m.importedItemsTotal,
		m.importRunDuration,
		m.importErrorsTotal,
	)

	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusCode := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

// IncActiveRequests increments active requests
func (m *Metrics) IncActiveRequests() {
	m.httpActiveRequests.Inc()
}

// DecActiveRequests decrements active requests
func (m *Metrics) DecActiveRequests() {
	m.httpActiveRequests.Dec()
}

// RecordRecipeCreated increments the recipe creation counter
func (m *Metrics) RecordRecipeCreated() {
	m.recipesCreatedTotal.Inc()
}

// RecordUserRegistered increments the registration counter
func (m *Metrics) RecordUserRegistered() {
	m.usersRegisteredTotal.Inc()
}

// RecordContactMessage increments the contact submission counter
func (m *Metrics) RecordContactMessage() {
	m.contactMessagesTotal.Inc()
}

// RecordImport records the outcome of an import run
func (m *Metrics) RecordImport(outcome string, recipes, ingredients, rowErrors int, duration time.Duration) {
	m.importRunsTotal.WithLabelValues(outcome).Inc()
	m.importedItemsTotal.WithLabelValues("recipe").Add(float64(recipes))
	m.importedItemsTotal.WithLabelValues("ingredient").Add(float64(ingredients))
	m.importErrorsTotal.Add(float64(rowErrors))
	m.importRunDuration.Observe(duration.Seconds())
}
