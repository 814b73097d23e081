// Package logging assembles structured slog loggers and formatting helpers used
// across famcontents.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so generation code can tag log
// lines with request IDs, content IDs, channels, and task kinds. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
