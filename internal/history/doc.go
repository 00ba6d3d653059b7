// Package history persists a record of clean runs in SQLite.
//
// Each invocation of the clean pipeline is a Job: it starts running, then
// either completes with its measured loudness statistics or fails with an
// error message. The store backs the `voice-cleaner history` commands and is
// best-effort from the pipeline's perspective; a broken history database
// never blocks a clean run.
package history
