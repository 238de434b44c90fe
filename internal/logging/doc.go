// Package logging assembles structured slog loggers and formatting helpers used
// across vidsync.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so a comparison operation can
// tag every log line with its run id and operation name. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
