// Package logctx carries a request-scoped logger through context so lower
// layers inherit the request's trace and request-id fields without depending
// on the HTTP layer.
package logctx

import (
	"context"

	"github.com/tiendago/storefront/internal/observability"
)

type ctxKey int

const loggerCtxKey ctxKey = iota

// With returns a context carrying the given logger. A nil logger leaves the
// context untouched.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// From returns the logger stored on the context, or nil when none is set.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerCtxKey).(observability.Logger); ok {
		return logger
	}
	return nil
}

// FromOr prefers the context logger and falls back to the given one.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return observability.NopLogger()
}
