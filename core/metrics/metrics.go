package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for remote API traffic.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates the API collectors and registers them with reg.
// Passing nil registers nothing, which keeps tests free of global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocer_api_requests_total",
				Help: "Total number of remote API commands by outcome",
			},
			[]string{"command", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grocer_api_request_duration_seconds",
				Help:    "Remote API command latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

// ObserveRequest records one finished command. Safe to call on a nil *Metrics.
func (m *Metrics) ObserveRequest(command, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(command, status).Inc()
	m.latency.WithLabelValues(command).Observe(elapsed.Seconds())
}

// Requests exposes the request counter for inspection.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}
