package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insider-one/push-relay/internal/domain"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dispatchTotal       *prometheus.CounterVec
	dispatchDuration    *prometheus.HistogramVec

	mu       sync.Mutex
	outcomes map[domain.Outcome]int64
	started  time.Time
}

// NewMetrics creates new Prometheus metrics on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_dispatch_total",
				Help: "Total number of message dispatches by outcome",
			},
			[]string{"outcome", "code"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_dispatch_duration_seconds",
				Help:    "Time spent validating and sending a message",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"outcome"},
		),
		outcomes: make(map[domain.Outcome]int64),
		started:  time.Now(),
	}
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDispatch records a finished dispatch
func (m *Metrics) RecordDispatch(event *domain.DispatchEvent) {
	m.dispatchTotal.WithLabelValues(string(event.Outcome), event.Code.Name()).Inc()
	m.dispatchDuration.WithLabelValues(string(event.Outcome)).Observe(event.Duration.Seconds())

	m.mu.Lock()
	m.outcomes[event.Outcome]++
	m.mu.Unlock()
}

// Snapshot returns dispatch counts by outcome since start
func (m *Metrics) Snapshot() map[domain.Outcome]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[domain.Outcome]int64, len(m.outcomes))
	for outcome, count := range m.outcomes {
		snapshot[outcome] = count
	}
	return snapshot
}

// MetricsHandler handles metrics endpoints
type MetricsHandler struct {
	metrics *Metrics
	hub     *WebSocketHub
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *Metrics, hub *WebSocketHub) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		hub:     hub,
	}
}

// Handler returns the Prometheus HTTP handler
func (h *MetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})
}

// RealtimeMetrics represents real-time dispatch metrics
type RealtimeMetrics struct {
	Delivered     int64   `json:"delivered"`
	Undelivered   int64   `json:"undelivered"`
	Rejected      int64   `json:"rejected"`
	Faults        int64   `json:"faults"`
	Subscribers   int     `json:"subscribers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// RealtimeMetrics handles real-time metrics requests
// @Summary Real-time metrics
// @Description Get dispatch counts by outcome and live feed subscribers
// @Tags metrics
// @Produce json
// @Success 200 {object} RealtimeMetrics
// @Router /metrics/realtime [get]
func (h *MetricsHandler) RealtimeMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := h.metrics.Snapshot()

	metrics := RealtimeMetrics{
		Delivered:     snapshot[domain.OutcomeDelivered],
		Undelivered:   snapshot[domain.OutcomeUndelivered],
		Rejected:      snapshot[domain.OutcomeRejected],
		Faults:        snapshot[domain.OutcomeFault],
		UptimeSeconds: time.Since(h.metrics.started).Seconds(),
	}
	if h.hub != nil {
		metrics.Subscribers = h.hub.GetClientCount()
	}

	JSON(w, http.StatusOK, metrics)
}
