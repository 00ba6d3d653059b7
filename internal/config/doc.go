// Package config loads, normalizes, and validates voice-cleaner
// configuration.
//
// Configuration lives in a TOML file (default
// ~/.config/voice-cleaner/config.toml, or voice-cleaner.toml in the current
// directory). Every field has a working default so the tool runs without any
// config file at all, which is the common case inside the container image.
//
// Sections:
//   - [paths]: log directory and history database location
//   - [audio]: loudness target and output encoding
//   - [filters]: voice cleanup filter chain parameters
//   - [tools]: ffmpeg/ffprobe binaries and run timeout
//   - [history]: job history retention
//   - [logging]: log format and level
package config
