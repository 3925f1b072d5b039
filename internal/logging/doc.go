// Package logging assembles structured slog loggers and formatting helpers used
// across qsomerge.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with the run id and stage name. Logs are written to stderr (plus an optional
// file) so stdout stays free for reports and merged output. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
