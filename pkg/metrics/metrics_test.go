package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if !m.Enabled() {
		t.Error("Expected metrics to be enabled")
	}
	if m.Registry() == nil {
		t.Error("Expected registry when enabled")
	}
}

func TestNewManager_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	m := NewManager(cfg)
	if m.Enabled() {
		t.Error("Expected metrics to be disabled")
	}
	if m.Registry() != nil {
		t.Error("Expected no registry when disabled")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewManager(DefaultConfig())
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/api/tweet", "200", 120*time.Millisecond)
	m.RecordProviderCall(ctx, "dify", "run_workflow", OutcomeSuccess, 2*time.Second)
	m.RecordWorkflowRun("succeeded")
	m.RecordWorkflowUsage(42, 3)
	m.RecordTweet(OutcomeSuccess, 12)
	m.RecordAuthFlow("authorize", OutcomeSuccess)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	expectedMetrics := []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"provider_requests_total",
		"provider_request_duration_seconds",
		"workflow_runs_total",
		"workflow_tokens_total",
		"workflow_steps",
		"tweets_total",
		"tweet_length_chars",
		"oauth_flows_total",
		"go_goroutines",
	}
	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric %s not found in output", metric)
		}
	}
}

func TestMetricsHandler_Disabled(t *testing.T) {
	m := NoOpManager()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 when disabled, got %d", w.Code)
	}
}

func TestRecordProviderCall(t *testing.T) {
	m := NewManager(DefaultConfig())
	ctx := context.Background()

	m.RecordProviderCall(ctx, "twitter", "create_tweet", OutcomeSuccess, time.Second)
	m.RecordProviderCall(ctx, "twitter", "create_tweet", "provider_domain", time.Second)
	m.RecordProviderCall(ctx, "twitter", "create_tweet", "provider_domain", time.Second)

	if got := testutil.ToFloat64(m.providerRequests.WithLabelValues("twitter", "create_tweet", OutcomeSuccess)); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerRequests.WithLabelValues("twitter", "create_tweet", "provider_domain")); got != 2 {
		t.Errorf("expected 2 failures, got %v", got)
	}
}

func TestRecordWorkflow(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.RecordWorkflowRun("succeeded")
	m.RecordWorkflowRun("failed")
	m.RecordWorkflowUsage(100, 2)
	m.RecordWorkflowUsage(0, 1)

	if got := testutil.ToFloat64(m.workflowRuns.WithLabelValues("succeeded")); got != 1 {
		t.Errorf("expected 1 succeeded run, got %v", got)
	}
	if got := testutil.ToFloat64(m.workflowTokens); got != 100 {
		t.Errorf("expected 100 tokens, got %v", got)
	}
	if got := testutil.CollectAndCount(m.workflowSteps); got != 1 {
		t.Errorf("expected one steps series, got %d", got)
	}
}

func TestRecordTweet(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.RecordTweet(OutcomeSuccess, 280)
	m.RecordTweet("validation", 0)
	m.RecordAuthFlow("callback", OutcomeError)

	if got := testutil.ToFloat64(m.tweets.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("expected 1 published tweet, got %v", got)
	}
	if got := testutil.ToFloat64(m.tweets.WithLabelValues("validation")); got != 1 {
		t.Errorf("expected 1 rejected tweet, got %v", got)
	}
	if got := testutil.ToFloat64(m.authFlows.WithLabelValues("callback", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed callback, got %v", got)
	}
}

func TestStartServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 19091

	m := NewManager(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.StartServer(ctx, "127.0.0.1", cfg.Port, cfg.Path)
	}()

	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:19091/metrics")
	if err != nil {
		t.Fatalf("Failed to fetch metrics: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Server error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("metrics server did not stop")
	}
}

func TestStartServer_Disabled(t *testing.T) {
	if err := NoOpManager().StartServer(context.Background(), "", 0, "/metrics"); err != nil {
		t.Errorf("expected nil error when disabled, got %v", err)
	}
}

func TestNoOpManager(t *testing.T) {
	ctx := context.Background()
	for _, m := range []*Manager{NoOpManager(), nil} {
		if m.Enabled() {
			t.Error("NoOpManager should not be enabled")
		}

		// These should not panic
		m.RecordHTTPRequest(ctx, "GET", "/", "200", time.Second)
		m.IncActiveConnections()
		m.DecActiveConnections()
		m.RecordProviderCall(ctx, "dify", "run_workflow", OutcomeSuccess, time.Second)
		m.RecordWorkflowRun("succeeded")
		m.RecordWorkflowUsage(1, 1)
		m.RecordTweet(OutcomeSuccess, 1)
		m.RecordAuthFlow("authorize", OutcomeSuccess)
	}
}

func BenchmarkRecordHTTPRequest(b *testing.B) {
	m := NewManager(DefaultConfig())
	ctx := context.Background()
	d := 5 * time.Millisecond
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordHTTPRequest(ctx, "POST", "/api/correct-grammar", "200", d)
	}
}

func BenchmarkRecordProviderCall(b *testing.B) {
	m := NewManager(DefaultConfig())
	ctx := context.Background()
	d := 800 * time.Millisecond
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordProviderCall(ctx, "dify", "run_workflow", OutcomeSuccess, d)
	}
}

func BenchmarkNoOpRecording(b *testing.B) {
	m := NoOpManager()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordProviderCall(ctx, "dify", "run_workflow", OutcomeSuccess, time.Millisecond)
		m.RecordTweet(OutcomeSuccess, 10)
	}
}
