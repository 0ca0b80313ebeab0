// Package logging builds the process-wide zap logger. Application code does
// not use zap directly; it goes through the observability.Logger port. This
// package only serves main.go and the adapters.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Placeholder trace identifiers for log lines emitted outside any request,
// e.g. startup and shutdown.
const (
	SystemTraceID = "system"
	SystemSpanID  = "system"
)

// NewLogger builds a JSON logger writing to stdout, stamped with the service
// and environment. Setting LOG_FILE duplicates output to that file, which
// helps when tailing a single process locally.
func NewLogger(service, env string) (*zap.Logger, error) {
	sinks := []string{"stdout"}
	if path := os.Getenv("LOG_FILE"); path != "" {
		if err := touchLogFile(path); err != nil {
			return nil, fmt.Errorf("log file %s: %w", path, err)
		}
		sinks = append(sinks, path)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "json",
		EncoderConfig:    enc,
		OutputPaths:      sinks,
		ErrorOutputPaths: sinks,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		InitialFields: map[string]any{
			"service": service,
			"env":     env,
		},
	}
	return cfg.Build()
}

// MustNewLogger panics when the logger cannot be built; only for main.go.
func MustNewLogger(service, env string) *zap.Logger {
	logger, err := NewLogger(service, env)
	if err != nil {
		panic(err)
	}
	return logger
}

// WithTrace attaches trace_id/span_id fields, substituting "unknown" for
// blanks so the fields are always present and queryable.
func WithTrace(logger *zap.Logger, traceID, spanID string) *zap.Logger {
	if logger == nil {
		logger = zap.L()
	}
	if traceID == "" {
		traceID = "unknown"
	}
	if spanID == "" {
		spanID = "unknown"
	}
	return logger.With(
		zap.String("trace_id", traceID),
		zap.String("span_id", spanID),
	)
}

func touchLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
