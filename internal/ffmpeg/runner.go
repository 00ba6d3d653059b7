package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"voicecleaner/internal/filtergraph"
)

var commandContext = exec.CommandContext

// Runner executes ffmpeg passes.
type Runner struct {
	binary string
}

// Option configures the runner.
type Option func(*Runner)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(binary) != "" {
			r.binary = binary
		}
	}
}

// NewRunner constructs a Runner using defaults.
func NewRunner(opts ...Option) *Runner {
	runner := &Runner{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Binary returns the ffmpeg command the runner executes.
func (r *Runner) Binary() string {
	return r.binary
}

// MeasurePlan describes a loudness measurement pass.
type MeasurePlan struct {
	Input        string
	AudioOrdinal int
	Filter       string
}

// CleanPlan describes the second pass that writes the cleaned output.
type CleanPlan struct {
	Input           string
	Output          string
	AudioOrdinal    int
	Filter          string
	Codec           string
	Bitrate         string
	DurationSeconds float64
}

// MeasureArgs returns the ffmpeg arguments for the measurement pass.
func (r *Runner) MeasureArgs(plan MeasurePlan) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", plan.Input,
		"-map", audioSpecifier(plan.AudioOrdinal),
		"-vn",
		"-af", plan.Filter,
		"-f", "null",
		"-",
	}
}

// CleanArgs returns the ffmpeg arguments for the apply pass.
func (r *Runner) CleanArgs(plan CleanPlan) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-progress", "pipe:1",
		"-i", plan.Input,
		"-map", "0:v:0",
		"-c:v", "copy",
		"-map", audioSpecifier(plan.AudioOrdinal),
		"-af", plan.Filter,
		"-c:a", plan.Codec,
		"-b:a", plan.Bitrate,
	}
	if isMovContainer(plan.Output) {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, plan.Output)
}

// Measure runs the measurement pass and returns the parsed loudnorm stats.
func (r *Runner) Measure(ctx context.Context, plan MeasurePlan) (filtergraph.Measured, error) {
	if strings.TrimSpace(plan.Input) == "" {
		return filtergraph.Measured{}, errors.New("measure: input path required")
	}
	if plan.AudioOrdinal < 0 {
		return filtergraph.Measured{}, errors.New("measure: audio stream required")
	}

	var stderr bytes.Buffer
	cmd := commandContext(ctx, r.binary, r.MeasureArgs(plan)...) //nolint:gosec
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return filtergraph.Measured{}, fmt.Errorf("ffmpeg measure pass: %w: %s", err, stderrTail(&stderr))
	}

	return filtergraph.ParseMeasurement(stderr.Bytes())
}

// Clean runs the apply pass, forwarding progress updates when a callback is
// provided.
func (r *Runner) Clean(ctx context.Context, plan CleanPlan, progress func(Progress)) error {
	if strings.TrimSpace(plan.Input) == "" {
		return errors.New("clean: input path required")
	}
	if strings.TrimSpace(plan.Output) == "" {
		return errors.New("clean: output path required")
	}
	if plan.AudioOrdinal < 0 {
		return errors.New("clean: audio stream required")
	}

	var stderr bytes.Buffer
	cmd := commandContext(ctx, r.binary, r.CleanArgs(plan)...) //nolint:gosec
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	parser := newProgressParser(plan.DurationSeconds)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		update, ok := parser.feed(scanner.Text())
		if !ok {
			continue
		}
		if progress != nil {
			progress(update)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read ffmpeg progress: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg clean pass: %w: %s", err, stderrTail(&stderr))
	}
	return nil
}

// Version reports the ffmpeg version banner's first line.
func (r *Runner) Version(ctx context.Context) (string, error) {
	cmd := commandContext(ctx, r.binary, "-version") //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg version: %w", err)
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line), nil
}

func audioSpecifier(ordinal int) string {
	return "0:a:" + strconv.Itoa(ordinal)
}

// isMovContainer reports whether the output container understands mov muxer
// options such as +faststart.
func isMovContainer(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".m4a", ".mov":
		return true
	}
	return false
}

func stderrTail(buf *bytes.Buffer) string {
	const limit = 2048
	data := bytes.TrimSpace(buf.Bytes())
	if len(data) > limit {
		data = data[len(data)-limit:]
	}
	return string(data)
}
