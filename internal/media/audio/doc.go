// Package audio selects the dialogue track a clean run should process.
//
// This package depends only on internal/media/ffprobe and could be extracted
// as a standalone library alongside ffprobe.
//
// The selection algorithm filters to tracks matching the preferred language
// (falling back to all tracks if none match), then ranks candidates by:
//  1. Default disposition flag
//  2. Channel layouts suited to speech (mono/stereo over surround)
//  3. Earlier container order
//
// Tracks whose titles mark them as commentary or descriptive audio are
// penalized so the main dialogue track wins when tags are present.
//
// Key types:
//   - Selection: the chosen stream plus the streams a clean run drops
//
// Primary entry point:
//   - Select: analyzes streams and returns the dialogue selection
package audio
