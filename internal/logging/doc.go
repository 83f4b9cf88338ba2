// Package logging assembles structured slog loggers and formatting helpers used
// across earshot.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the
// ingest pipeline tag log lines with request and context identifiers. The
// package also provides a no-op logger for tests.
package logging
