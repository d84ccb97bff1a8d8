package obs

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// Recording methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	upstreamErrors  prometheus.Counter
	logger          *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cheapfare_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cheapfare_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{0.005, 0.02, 0.1, 0.3, 1, 2, 5},
			},
			[]string{"path"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cheapfare_predictions_total",
				Help: "Total number of /predict outcomes",
			},
			[]string{"outcome"},
		),
		upstreamErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cheapfare_upstream_errors_total",
				Help: "Total number of failed fare-matrix calls",
			},
		),
		logger: logger,
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.predictions,
		m.upstreamErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// IncPrediction counts a /predict outcome such as "ok" or "not_found".
func (m *Metrics) IncPrediction(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

// IncUpstreamErrors increments the upstream errors counter.
func (m *Metrics) IncUpstreamErrors() {
	if m == nil {
		return
	}
	m.upstreamErrors.Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(m.logger.Handler(), slog.LevelError),
	})
}
