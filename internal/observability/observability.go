// Package observability defines the vendor-hiding telemetry ports. Domain and
// application code depend only on these interfaces; zap, prometheus and otel
// stay behind the adapters in internal/infrastructure/observability.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Field is a structured log attribute.
type Field struct {
	Key   string
	Value any
}

// F builds a log field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Label is a metric dimension. Keep values low-cardinality.
type Label struct{ Key, Value string }

// L builds a metric label.
func L(key, value string) Label { return Label{Key: key, Value: value} }

// MetricKey names a registered instrument; see metrics.go for the known keys.
type MetricKey string

type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Tracer starts spans. It returns the otel span type directly: hiding it
// behind another interface would just mirror otel's API method for method.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type Counter interface {
	Add(delta float64, labels ...Label)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
}

// Metrics resolves instruments by key. Unknown keys resolve to no-ops so a
// missing registration degrades silently rather than panicking.
type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
}

// Observability bundles the three ports; use cases take this single value.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}
