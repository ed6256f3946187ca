package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func (m *Manager) initTweetMetrics() {
	m.tweets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tweets_total",
			Help: "Total number of tweet publish attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.tweetChars = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tweet_length_chars",
			Help:    "Length in characters of published tweets",
			Buckets: []float64{20, 50, 100, 140, 200, 280},
		},
	)

	m.authFlows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_flows_total",
			Help: "Total number of OAuth 2.0 authorization steps by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	m.registry.MustRegister(m.tweets)
	m.registry.MustRegister(m.tweetChars)
	m.registry.MustRegister(m.authFlows)
}

// RecordTweet records a publish attempt. length is only observed on success.
func (m *Manager) RecordTweet(outcome string, length int) {
	if !m.Enabled() {
		return
	}
	m.tweets.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.tweetChars.Observe(float64(length))
	}
}

// RecordAuthFlow records an authorization step ("authorize" or "callback").
func (m *Manager) RecordAuthFlow(stage, outcome string) {
	if !m.Enabled() {
		return
	}
	m.authFlows.WithLabelValues(stage, outcome).Inc()
}
