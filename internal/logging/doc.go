// Package logging assembles the structured slog loggers used across
// voice-cleaner.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so pipeline code emits log lines
// with a consistent shape. A no-op logger is provided for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// log with the same shape and routing as the rest of the tool.
package logging
