// Package metrics exposes Prometheus counters for playlist ingestion.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	parsesTotal   *prometheus.CounterVec
	parseErrors   prometheus.Counter
	fetchErrors   prometheus.Counter
	itemsTotal    prometheus.Counter
	requestsTotal prometheus.Counter
	httpErrors    prometheus.Counter
	catalogSize   prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		parsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playlistkit_parses_total",
			Help: "Total number of parsed playlist documents by type",
		}, []string{"type"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistkit_parse_errors_total",
			Help: "Total number of documents whose references could not be resolved",
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistkit_fetch_errors_total",
			Help: "Total number of failed playlist fetches",
		}),
		itemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistkit_items_total",
			Help: "Total number of media items extracted",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistkit_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		httpErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistkit_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "playlistkit_catalog_entries",
			Help: "Number of playlists in the catalog",
		}),
	}

	registry.MustRegister(
		m.parsesTotal,
		m.parseErrors,
		m.fetchErrors,
		m.itemsTotal,
		m.requestsTotal,
		m.httpErrors,
		m.catalogSize,
	)

	return m
}

// ObserveParse records a successful parse of the given type.
func (m *Metrics) ObserveParse(playlistType string, items int) {
	m.parsesTotal.WithLabelValues(playlistType).Inc()
	m.itemsTotal.Add(float64(items))
}

// IncParseErrors increments the parse error counter.
func (m *Metrics) IncParseErrors() {
	m.parseErrors.Inc()
}

// IncFetchErrors increments the fetch error counter.
func (m *Metrics) IncFetchErrors() {
	m.fetchErrors.Inc()
}

// IncRequests increments the HTTP request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncHTTPErrors increments the HTTP error counter.
func (m *Metrics) IncHTTPErrors() {
	m.httpErrors.Inc()
}

// SetCatalogSize sets the catalog gauge.
func (m *Metrics) SetCatalogSize(n int) {
	m.catalogSize.Set(float64(n))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics. updateGauges, if set, runs before each scrape.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		inner.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for metrics.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestMiddleware counts requests and error responses.
func RequestMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrap, r)
			m.IncRequests()
			if wrap.status >= 400 {
				m.IncHTTPErrors()
			}
		})
	}
}
