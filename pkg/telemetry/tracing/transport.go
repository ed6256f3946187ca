package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Transport is an http.RoundTripper that opens a client span per request
// and injects the trace context into the outgoing headers.
type Transport struct {
	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper

	// Peer names the remote service in span names and attributes.
	Peer string
}

// NewTransport wraps base with client-side tracing for peer.
func NewTransport(base http.RoundTripper, peer string) *Transport {
	return &Transport{Base: base, Peer: peer}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	name := req.Method
	if t.Peer != "" {
		name = t.Peer + " " + req.Method
	}

	ctx, span := Tracer().Start(req.Context(), name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("server.address", req.URL.Hostname()),
		attribute.String("url.path", req.URL.Path),
	)
	if t.Peer != "" {
		span.SetAttributes(attribute.String("peer.service", t.Peer))
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))

	resp, err := base.RoundTrip(out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(otelcodes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}

// WrapClient returns a copy of client whose transport is traced.
// A nil client wraps http.DefaultTransport.
func WrapClient(client *http.Client, peer string) *http.Client {
	var c http.Client
	if client != nil {
		c = *client
	}
	if _, ok := c.Transport.(*Transport); ok {
		return &c
	}
	c.Transport = NewTransport(c.Transport, peer)
	return &c
}
