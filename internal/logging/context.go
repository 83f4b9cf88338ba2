package logging

import (
	"context"
	"log/slog"
)

// Standard field keys.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldContextID = "context_id"
	FieldEventType = "event_type"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	contextIDKey contextKey = "context_id"
)

// WithRequestID annotates ctx with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithContextID annotates ctx with the review context being worked on.
func WithContextID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, contextIDKey, id)
}

// ContextIDFromContext returns the review context identifier if present.
func ContextIDFromContext(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(contextIDKey).(int64)
	return v, ok
}

// WithContext returns logger enriched with the identifiers stamped on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var attrs []any
	if id, ok := RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRequestID, id))
	}
	if id, ok := ContextIDFromContext(ctx); ok {
		attrs = append(attrs, Int64(FieldContextID, id))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
