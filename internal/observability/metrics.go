package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardlore/cardlore/internal/types"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0}

// Metrics holds the Prometheus metrics of the service. It records catalog
// operations (catalog.Recorder), graph sessions (graph.SessionObserver) and
// HTTP requests.
type Metrics struct {
	registry *prometheus.Registry

	// Catalog operations
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// Graph sessions
	sessionsTotal prometheus.Counter
	openSessions  prometheus.Gauge

	// HTTP
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics on a dedicated registry that also carries
// the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlore_catalog_operations_total",
			Help: "Total number of catalog operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlore_catalog_operation_duration_seconds",
			Help:    "Duration of catalog operations",
			Buckets: durationBuckets,
		},
		[]string{"operation"},
	)
	m.sessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlore_graph_sessions_total",
			Help: "Total number of graph read sessions opened",
		},
	)
	m.openSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardlore_graph_open_sessions",
			Help: "Graph read sessions currently open",
		},
	)
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlore_http_requests_total",
			Help: "Total number of HTTP requests by path and status code",
		},
		[]string{"path", "code"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: durationBuckets,
		},
		[]string{"path"},
	)

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operationsTotal,
		m.operationDuration,
		m.sessionsTotal,
		m.openSessions,
		m.requestsTotal,
		m.requestDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, types.WrapError(ErrCodeMetricsRegistration, "failed to register collector", err)
		}
	}

	return m, nil
}

// ObserveOperation records one finished catalog operation.
func (m *Metrics) ObserveOperation(op string, outcome string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(op, outcome).Inc()
	m.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SessionOpened records a graph session being acquired.
func (m *Metrics) SessionOpened() {
	m.sessionsTotal.Inc()
	m.openSessions.Inc()
}

// SessionClosed records a graph session being released.
func (m *Metrics) SessionClosed() {
	m.openSessions.Dec()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(path string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
