package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/grammarpost/grammarpost/config"
)

// keepingExporter holds spans past Shutdown so tests can read them after
// the ShutdownFunc has flushed the batcher.
type keepingExporter struct {
	*tracetest.InMemoryExporter
}

func (keepingExporter) Shutdown(context.Context) error { return nil }

type failingExporter struct {
	mu    sync.Mutex
	calls int
}

func (f *failingExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("collector unavailable")
}

func (f *failingExporter) Shutdown(context.Context) error { return nil }

// useExporter restores the global provider, propagator and exporter
// factory when the test ends, and makes Init build exp.
func useExporter(t *testing.T, exp sdktrace.SpanExporter) *bool {
	t.Helper()

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	prevFactory := newExporter
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		newExporter = prevFactory
	})

	// Start from a propagator that injects nothing so Init has to install one.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())

	called := new(bool)
	newExporter = func(context.Context, config.TracingConfig) (sdktrace.SpanExporter, error) {
		*called = true
		return exp, nil
	}
	return called
}

func enabledConfig() config.TracingConfig {
	return config.TracingConfig{
		Enabled:  true,
		Exporter: "otlp",
		Endpoint: "http://collector:4317",
		Timeout:  time.Second,
		Sampler:  "always_on",
	}
}

// headerServer records the trace headers of the last request it served.
func headerServer(t *testing.T) (*httptest.Server, func() http.Header) {
	t.Helper()

	var (
		mu  sync.Mutex
		got http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() http.Header {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
}

func TestInit_ProviderCallProducesClientSpan(t *testing.T) {
	exp := keepingExporter{tracetest.NewInMemoryExporter()}
	useExporter(t, exp)

	shutdown, err := Init(context.Background(), enabledConfig(), "grammarpost", "test")
	require.NoError(t, err)

	srv, headers := headerServer(t)
	client := WrapClient(srv.Client(), "dify")

	ctx, parent := Tracer().Start(context.Background(), "dify.CorrectGrammar")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/v1/workflows/run", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	parent.End()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	var clientSpan tracetest.SpanStub
	for _, s := range spans {
		if s.SpanKind == trace.SpanKindClient {
			clientSpan = s
		}
	}
	require.Equal(t, "dify POST", clientSpan.Name)
	assert.Equal(t, parent.SpanContext().SpanID(), clientSpan.Parent.SpanID())
	assert.Equal(t, "grammarpost", resourceValue(clientSpan, "service.name"))

	// The provider sees the client span as its parent.
	remote := trace.SpanContextFromContext(
		otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(headers())))
	assert.Equal(t, clientSpan.SpanContext.TraceID(), remote.TraceID())
	assert.Equal(t, clientSpan.SpanContext.SpanID(), remote.SpanID())
}

func resourceValue(s tracetest.SpanStub, key string) string {
	if s.Resource == nil {
		return ""
	}
	for _, kv := range s.Resource.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestInit_DisabledStillForwardsInboundContext(t *testing.T) {
	called := useExporter(t, keepingExporter{tracetest.NewInMemoryExporter()})

	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, "grammarpost", "test")
	require.NoError(t, err)
	assert.False(t, *called, "no exporter without tracing")
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")

	// A request arriving with a trace keeps it on the way to the provider.
	inbound := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), inbound)

	srv, headers := headerServer(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/2/tweets", nil)
	require.NoError(t, err)
	resp, err := WrapClient(srv.Client(), "twitter").Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headers().Get("traceparent"))
}

func TestInit_RejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.TracingConfig)
		want   string
	}{
		{"no exporter", func(c *config.TracingConfig) { c.Exporter = " " }, "exporter"},
		{"no endpoint", func(c *config.TracingConfig) { c.Endpoint = "" }, "endpoint"},
		{"no timeout", func(c *config.TracingConfig) { c.Timeout = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := useExporter(t, &failingExporter{})
			cfg := enabledConfig()
			tt.mutate(&cfg)

			_, err := Init(context.Background(), cfg, "grammarpost", "test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.False(t, *called)
		})
	}
}

func TestInit_ExportFailureIsDropped(t *testing.T) {
	exp := &failingExporter{}
	useExporter(t, exp)

	prev := exportFailed
	t.Cleanup(func() { exportFailed = prev })

	var reported []string
	var mu sync.Mutex
	exportFailed = func(err error, endpoint string, spans int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Error(t, err)
		assert.Positive(t, spans)
		reported = append(reported, endpoint)
	}

	shutdown, err := Init(context.Background(), enabledConfig(), "grammarpost", "test")
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "twitter.CreateTweet")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx), "a collector outage must not fail shutdown")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"collector:4317"}, reported)
}

func TestSelectSampler(t *testing.T) {
	tests := []struct {
		sampler string
		rate    float64
		want    string
	}{
		{"always_on", 0, "ParentBased{root:AlwaysOnSampler"},
		{"always_off", 0, "AlwaysOffSampler"},
		{"ratio", 0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
		{"", 3, "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		got := selectSampler(config.TracingConfig{Sampler: tt.sampler, SampleRate: tt.rate}).Description()
		assert.Contains(t, got, tt.want, "sampler %q", tt.sampler)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"localhost:4317":                   "localhost:4317",
		" http://collector:4317/v1/traces": "collector:4317",
		"":                                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeEndpoint(in), "normalizeEndpoint(%q)", in)
	}
}
