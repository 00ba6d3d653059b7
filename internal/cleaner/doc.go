// Package cleaner orchestrates a full clean run: probe the input, pick the
// dialogue stream, measure loudness, apply the cleanup chain, and land the
// output atomically.
//
// A run writes to a hidden sibling of the output path and renames it into
// place only after the result verifies, so an interrupted run never leaves a
// half-written file at the requested output. A file lock on the output
// guards against two concurrent runs targeting the same path.
//
// History recording is best-effort: a broken history database logs a warning
// but never fails the run.
package cleaner
