// Package oteltrace adapts the global OpenTelemetry tracer to the
// observability.Tracer port. Spans are recorded only when the host process
// installs an SDK tracer provider via otel.SetTracerProvider; without one this
// degrades to no-op spans, which keeps tracing optional in local runs.
package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tiendago/storefront/internal/observability"
)

const defaultInstrumentationName = "storefront"

type otelTracer struct {
	inner trace.Tracer
}

func New(name string) observability.Tracer {
	if name == "" {
		name = defaultInstrumentationName
	}
	return otelTracer{inner: otel.Tracer(name)}
}

func (t otelTracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.inner.Start(ctx, name, trace.WithAttributes(attrs...))
}
