package logging

import (
	"log/slog"
	"time"
)

// Standardized structured logging keys used across the pipeline.
const (
	// FieldComponent names the subsystem emitting the record.
	FieldComponent = "component"
	// FieldJobID carries the registry job identifier.
	FieldJobID = "job_id"
	// FieldRow is the zero-based product list index being processed.
	FieldRow = "row"
	// FieldProduct is the human-readable product name.
	FieldProduct = "product"
	// FieldPlatform names a publishing target.
	FieldPlatform = "platform"
	// FieldStage names the pipeline stage.
	FieldStage = "stage"
	// FieldEventType tags machine-readable lifecycle events.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next operator action after a failure.
	FieldErrorHint = "error_hint"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attrs into the variadic any form slog methods expect.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// WithComponent returns a logger tagged with a standardized component
// attribute. A nil base falls back to the no-op logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
