// Package logging assembles structured slog loggers and formatting helpers used
// across voicetag.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so a prediction request's log lines all
// carry the same request_id. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
