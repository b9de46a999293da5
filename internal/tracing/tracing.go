// Package tracing provides an OpenTelemetry TracerProvider for the query
// and customization spans spec.md's diagnostics surface calls out,
// mirroring the teacher's pkg/telemetry but trimmed to a stdouttrace
// exporter since this process has no collector to ship OTLP spans to
// (see DESIGN.md for the dropped-dependency justification).
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"roadrouter/internal/config"
)

// Provider wraps an sdktrace.TracerProvider the way the teacher's
// telemetry.Provider wraps its OTLP-backed one.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

var global *Provider

// Init builds a Provider from cfg. When cfg.Enabled is false it returns a
// noop provider backed by the global no-op tracer, never touching stdout.
func Init(cfg config.TracingConfig) (*Provider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadrouter"
	}

	if !cfg.Enabled {
		p := &Provider{tracer: otel.Tracer(serviceName)}
		global = p
		return p, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	p := &Provider{tp: tp, tracer: tp.Tracer(serviceName)}
	global = p
	return p, nil
}

// Shutdown flushes and stops the underlying TracerProvider, a no-op for a
// disabled Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the wrapped trace.Tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Get returns the process-wide Provider, falling back to a no-op tracer if
// Init was never called (e.g. in a test binary).
func Get() *Provider {
	if global == nil {
		return &Provider{tracer: otel.Tracer("roadrouter")}
	}
	return global
}

// StartSpan starts a span on the process-wide tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Get().tracer.Start(ctx, name, opts...)
}

// SetError records err on the span in ctx and marks the span's status as an error.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets attrs on the span in ctx.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
