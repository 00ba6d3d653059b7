// Package deps reports availability of the external binaries voice-cleaner
// shells out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency voice-cleaner relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Available binaries get their version banner as the detail when it can be
// read.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		status.Detail = versionBanner(ctx, resolved)
		results = append(results, status)
	}
	return results
}

// versionBanner returns the first line of `<binary> -version`, the flag both
// ffmpeg and ffprobe understand. Empty when the banner cannot be read.
func versionBanner(ctx context.Context, binary string) string {
	cmd := exec.CommandContext(ctx, binary, "-version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}
