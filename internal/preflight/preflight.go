package preflight

import (
	"context"

	"voicecleaner/internal/config"
	"voicecleaner/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := make([]Result, 0, 4)
	for _, status := range CheckTools(ctx, cfg) {
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available,
			Detail: status.Detail,
		})
	}

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	return results
}

// CheckTools evaluates the external binary requirements.
func CheckTools(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio filtering and loudness normalization",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}

// Failed reports whether any non-optional check failed.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
