package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for prediction request identifiers.
	FieldRequestID = "request_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a derived context carrying the provided request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request identifier when present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(requestIDKey).(string)
	return value, ok && value != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return logger.With(String(FieldRequestID, id))
	}
	return logger
}
