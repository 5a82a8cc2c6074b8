// Package logging assembles the structured slog loggers used by subparse.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag log lines with the decode session they belong to.
// NewNop provides a silent logger for tests and wiring code that cannot fail.
package logging
