// Package preflight runs the environment checks the deps command and the
// clean pipeline rely on: external binary availability and filesystem
// access for the directories voice-cleaner writes to.
package preflight
