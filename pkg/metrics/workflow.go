package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// initWorkflowMetrics initializes grammar workflow metrics.
func (m *Manager) initWorkflowMetrics() {
	m.workflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Total number of grammar workflow runs by final status",
		},
		[]string{"status"},
	)

	m.workflowTokens = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_tokens_total",
			Help: "Total tokens consumed by succeeded workflow runs",
		},
	)

	m.workflowSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workflow_steps",
			Help:    "Number of steps executed per succeeded workflow run",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	m.registry.MustRegister(m.workflowRuns)
	m.registry.MustRegister(m.workflowTokens)
	m.registry.MustRegister(m.workflowSteps)
}

// RecordWorkflowRun records a workflow run with the status the provider reported.
func (m *Manager) RecordWorkflowRun(status string) {
	if !m.Enabled() {
		return
	}
	m.workflowRuns.WithLabelValues(status).Inc()
}

// RecordWorkflowUsage records token and step counts of a succeeded run.
func (m *Manager) RecordWorkflowUsage(tokens, steps int) {
	if !m.Enabled() {
		return
	}
	if tokens > 0 {
		m.workflowTokens.Add(float64(tokens))
	}
	m.workflowSteps.Observe(float64(steps))
}
