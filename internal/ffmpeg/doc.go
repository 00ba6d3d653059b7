// Package ffmpeg wraps the ffmpeg command line for the two clean passes.
//
// Key types:
//   - Runner: executes ffmpeg with a configurable binary
//   - MeasurePlan / CleanPlan: fully resolved arguments for one pass
//   - Progress: decoded -progress output for the apply pass
//
// The measure pass runs the filter chain against the null muxer and parses
// the loudnorm statistics from stderr. The clean pass copies the video
// stream, encodes the cleaned audio, and streams machine-readable progress
// from stdout. Argument construction is exposed separately (MeasureArgs,
// CleanArgs) so dry runs can print the exact command without executing it.
package ffmpeg
