package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNetwork  = "network"
)

// Metrics groups the Prometheus collectors of the booking front end.
type Metrics struct {
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ActiveSessions  prometheus.Gauge
	StreamClients   prometheus.Gauge
	EventsPublished *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mesaya_backend_requests_total",
				Help: "Calls made to the booking backend by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mesaya_backend_request_duration_seconds",
				Help:    "Booking backend call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mesaya_http_requests_total",
				Help: "Requests served by the booking UI",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mesaya_http_request_duration_seconds",
				Help:    "Booking UI request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mesaya_sessions_active",
			Help: "Page sessions currently held in memory",
		}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mesaya_availability_stream_clients",
			Help: "Open live availability websocket connections",
		}),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mesaya_events_published_total",
				Help: "Booking events handed to the broker by topic and outcome",
			},
			[]string{"topic", "outcome"},
		),
	}
}

// ObserveBackend records one backend call. A nil receiver is a no-op.
func (m *Metrics) ObserveBackend(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, outcome).Inc()
	m.BackendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
