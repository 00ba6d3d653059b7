// Command voice-cleaner cleans the dialogue track of a video file: it keeps
// the video stream untouched while filtering, denoising, and loudness
// normalizing the primary audio stream.
package main
