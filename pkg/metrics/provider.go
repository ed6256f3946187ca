package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

func (m *Manager) initProviderMetrics(cfg Config) {
	m.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of outbound provider calls by outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	m.providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Outbound provider call duration in seconds",
			Buckets: cfg.ProviderDurationBuckets,
		},
		[]string{"provider", "operation"},
	)

	m.registry.MustRegister(m.providerRequests)
	m.registry.MustRegister(m.providerDuration)
}

// RecordProviderCall records one outbound call to provider.
// outcome is OutcomeSuccess or an error kind such as "provider_http".
func (m *Manager) RecordProviderCall(ctx context.Context, provider, operation, outcome string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.providerRequests.WithLabelValues(provider, operation, outcome).Inc()
	observe(ctx, m.providerDuration.WithLabelValues(provider, operation), duration.Seconds())
}
