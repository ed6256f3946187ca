// Package tracing wires OpenTelemetry tracing for grammarpost: a process
// tracer provider exporting over OTLP/gRPC, W3C propagation, and a traced
// http.RoundTripper for provider calls.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/logger"
)

// InstrumentationName names the tracer used by grammarpost components.
const InstrumentationName = "github.com/grammarpost/grammarpost"

// Tracer returns the process tracer for grammarpost components.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// newExporter is swapped in tests.
var newExporter = func(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(normalizeEndpoint(cfg.Endpoint)),
		otlptracegrpc.WithTimeout(cfg.Timeout),
		otlptracegrpc.WithInsecure(),
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// exportFailed reports a dropped batch. Swapped in tests.
var exportFailed = func(err error, endpoint string, spans int) {
	logger.Warn("trace export failed", "error", err, "endpoint", endpoint, "span_count", spans)
}

// Init installs the propagator and the process tracer provider. With tracing
// disabled the provider is a no-op, but provider calls still forward the
// inbound trace context.
func Init(ctx context.Context, cfg config.TracingConfig, serviceName, serviceVersion string) (ShutdownFunc, error) {
	setPropagator()
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create tracing exporter: %w", err)
	}
	// Failed exports are logged and dropped so a collector outage never
	// surfaces in request handling.
	exp = &droppingExporter{SpanExporter: exp, endpoint: normalizeEndpoint(cfg.Endpoint)}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
	)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, fmt.Errorf("create tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		flushErr := tp.ForceFlush(ctx)
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracing provider: %w", errors.Join(flushErr, err))
		}
		if flushErr != nil {
			return fmt.Errorf("flush tracing provider: %w", flushErr)
		}
		return nil
	}, nil
}

func checkConfig(cfg config.TracingConfig) error {
	var errs []error
	if strings.TrimSpace(cfg.Exporter) == "" {
		errs = append(errs, errors.New("tracing exporter cannot be empty"))
	}
	if normalizeEndpoint(cfg.Endpoint) == "" {
		errs = append(errs, errors.New("tracing endpoint cannot be empty"))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, errors.New("tracing timeout must be > 0"))
	}
	return errors.Join(errs...)
}

type droppingExporter struct {
	sdktrace.SpanExporter
	endpoint string
}

func (e *droppingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := e.SpanExporter.ExportSpans(ctx, spans); err != nil {
		exportFailed(err, e.endpoint, len(spans))
	}
	return nil
}

// setPropagator installs W3C trace context and baggage propagation.
// Inbound requests and provider calls share it.
func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// selectSampler honours the caller's sampling decision; root spans follow
// the configured sampler.
func selectSampler(cfg config.TracingConfig) sdktrace.Sampler {
	switch strings.ToLower(strings.TrimSpace(cfg.Sampler)) {
	case "always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "always_off":
		return sdktrace.NeverSample()
	default:
		rate := cfg.SampleRate
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// normalizeEndpoint reduces a collector URL to the host:port otlptracegrpc expects.
func normalizeEndpoint(endpoint string) string {
	raw := strings.TrimSpace(endpoint)
	if !strings.Contains(raw, "://") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return parsed.Host
}
