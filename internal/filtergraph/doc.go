// Package filtergraph renders the ffmpeg audio filter chains used by a
// clean run and parses loudnorm measurement output.
//
// The chain is fixed in shape: band limiting, non-local means denoising, a
// noise gate, a dialogue compressor, and a limiter, followed by a loudnorm
// stage. Loudness normalization is two-pass: a measure filter prints the
// input's loudness statistics as JSON, and the apply filter feeds those
// measured values back with linear=true so the second pass applies a single
// gain correction instead of dynamic compression.
//
// Measured values stay strings end to end. ffmpeg prints them formatted and
// accepts them back verbatim; round-tripping through float64 risks
// reformatting drift between the two passes.
package filtergraph
