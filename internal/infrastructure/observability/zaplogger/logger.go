// Package zaplogger adapts zap to the observability.Logger port so
// application code never sees the vendor type.
package zaplogger

import (
	"go.uber.org/zap"

	"github.com/tiendago/storefront/internal/observability"
)

type adapter struct{ base *zap.Logger }

func Wrap(l *zap.Logger) observability.Logger {
	if l == nil {
		return observability.NopLogger()
	}
	return adapter{base: l}
}

func (a adapter) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return a
	}
	return adapter{base: a.base.With(convert(fields)...)}
}

func (a adapter) Debug(msg string, fields ...observability.Field) {
	a.base.Debug(msg, convert(fields)...)
}

func (a adapter) Info(msg string, fields ...observability.Field) {
	a.base.Info(msg, convert(fields)...)
}

func (a adapter) Warn(msg string, fields ...observability.Field) {
	a.base.Warn(msg, convert(fields)...)
}

func (a adapter) Error(msg string, fields ...observability.Field) {
	a.base.Error(msg, convert(fields)...)
}

func convert(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
