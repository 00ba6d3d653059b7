package cleaner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"voicecleaner/internal/config"
	"voicecleaner/internal/ffmpeg"
	"voicecleaner/internal/fileutil"
	"voicecleaner/internal/filtergraph"
	"voicecleaner/internal/history"
	"voicecleaner/internal/logging"
	"voicecleaner/internal/media/audio"
	"voicecleaner/internal/media/ffprobe"
)

// ErrOutputExists indicates the output path already exists and overwriting
// was not requested.
var ErrOutputExists = errors.New("output file already exists")

// ErrOutputLocked indicates another clean run is writing the same output.
var ErrOutputLocked = errors.New("output file locked by another clean run")

// Cleaner runs the two-pass clean pipeline.
type Cleaner struct {
	cfg    *config.Config
	runner *ffmpeg.Runner
	store  *history.Store
	logger *slog.Logger
}

// Request describes one clean run.
type Request struct {
	Input     string
	Output    string
	Overwrite bool
	Progress  func(ffmpeg.Progress)
}

// Result captures what a completed run did.
type Result struct {
	JobID       string
	Input       string
	Output      string
	Selection   audio.Selection
	Measured    filtergraph.Measured
	Duration    float64
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
}

// New constructs a Cleaner. store may be nil to disable history recording.
func New(cfg *config.Config, logger *slog.Logger, store *history.Store) *Cleaner {
	return &Cleaner{
		cfg:    cfg,
		runner: ffmpeg.NewRunner(ffmpeg.WithBinary(cfg.FFmpegBinary())),
		store:  store,
		logger: logging.NewComponentLogger(logger, "cleaner"),
	}
}

// Clean executes the pipeline for one input/output pair.
func (c *Cleaner) Clean(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	if c.cfg.Tools.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Tools.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	input, output, err := c.resolvePaths(req)
	if err != nil {
		return nil, err
	}

	lock := flock.New(output + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, output)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	jobID := c.startJob(ctx, input, output)

	result, err := c.run(ctx, input, output, req.Progress)
	if err != nil {
		c.failJob(ctx, jobID, err)
		return nil, err
	}
	result.JobID = jobID
	result.Elapsed = time.Since(started)

	c.completeJob(ctx, jobID, result)
	return result, nil
}

func (c *Cleaner) run(ctx context.Context, input, output string, progress func(ffmpeg.Progress)) (*Result, error) {
	probe, err := ffprobe.Inspect(ctx, c.cfg.FFprobeBinary(), input)
	if err != nil {
		return nil, err
	}
	if probe.VideoStreamCount() == 0 {
		return nil, fmt.Errorf("input has no video stream: %s", input)
	}

	selection := audio.Select(probe.Streams, c.cfg.Audio.Language)
	if !selection.Found() {
		return nil, fmt.Errorf("input has no audio stream: %s", input)
	}
	ordinal := probe.AudioOrdinal(selection.Index)
	c.logger.Info("dialogue stream selected", logging.Args(
		logging.String(logging.FieldStage, "probe"),
		logging.Int("stream_index", selection.Index),
		logging.String("stream", selection.Label()),
		logging.Int("dropped_streams", len(selection.RemovedIndices)),
	)...)

	measured, err := c.runner.Measure(ctx, ffmpeg.MeasurePlan{
		Input:        input,
		AudioOrdinal: ordinal,
		Filter:       filtergraph.Measure(c.cfg),
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("loudness measured", logging.Args(
		logging.String(logging.FieldStage, "measure"),
		logging.String("input_i", measured.InputI),
		logging.String("input_tp", measured.InputTP),
		logging.String("input_lra", measured.InputLRA),
		logging.String("target_offset", measured.TargetOffset),
	)...)

	tempOutput := fileutil.TempOutputPath(output)
	defer func() { _ = os.Remove(tempOutput) }()

	err = c.runner.Clean(ctx, ffmpeg.CleanPlan{
		Input:           input,
		Output:          tempOutput,
		AudioOrdinal:    ordinal,
		Filter:          filtergraph.Apply(c.cfg, measured),
		Codec:           c.cfg.Audio.Codec,
		Bitrate:         c.cfg.Audio.Bitrate,
		DurationSeconds: probe.DurationSeconds(),
	}, progress)
	if err != nil {
		return nil, err
	}

	if err := c.verifyOutput(ctx, tempOutput); err != nil {
		return nil, err
	}
	if err := fileutil.ReplaceFile(tempOutput, output); err != nil {
		return nil, err
	}
	c.logger.Info("clean finished", logging.Args(
		logging.String(logging.FieldStage, "finalize"),
		logging.String("output", output),
	)...)

	result := &Result{
		Input:     input,
		Output:    output,
		Selection: selection,
		Measured:  measured,
		Duration:  probe.DurationSeconds(),
	}
	if info, statErr := os.Stat(input); statErr == nil {
		result.InputBytes = info.Size()
	}
	if info, statErr := os.Stat(output); statErr == nil {
		result.OutputBytes = info.Size()
	}
	return result, nil
}

// verifyOutput re-probes the written file before it replaces the output.
func (c *Cleaner) verifyOutput(ctx context.Context, path string) error {
	probe, err := ffprobe.Inspect(ctx, c.cfg.FFprobeBinary(), path)
	if err != nil {
		return fmt.Errorf("verify output: %w", err)
	}
	if probe.VideoStreamCount() == 0 || probe.AudioStreamCount() == 0 {
		return fmt.Errorf("verify output: cleaned file is missing streams (video=%d audio=%d)",
			probe.VideoStreamCount(), probe.AudioStreamCount())
	}
	return nil
}

func (c *Cleaner) resolvePaths(req Request) (string, string, error) {
	input, err := filepath.Abs(req.Input)
	if err != nil {
		return "", "", fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("input file does not exist: %s", input)
		}
		return "", "", fmt.Errorf("inspect input: %w", err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("input is a directory: %s", input)
	}

	output, err := filepath.Abs(req.Output)
	if err != nil {
		return "", "", fmt.Errorf("resolve output path: %w", err)
	}
	if output == input {
		return "", "", errors.New("output path must differ from input path")
	}
	if _, err := os.Stat(output); err == nil && !req.Overwrite {
		return "", "", fmt.Errorf("%w: %s (pass --overwrite to replace it)", ErrOutputExists, output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}
	return input, output, nil
}

func (c *Cleaner) startJob(ctx context.Context, input, output string) string {
	if c.store == nil {
		return ""
	}
	job, err := c.store.StartJob(ctx, input, output, c.cfg.Audio.TargetI, c.cfg.Audio.Bitrate)
	if err != nil {
		c.logger.Warn("history record skipped", logging.Args(logging.Error(err))...)
		return ""
	}
	return job.ID
}

func (c *Cleaner) completeJob(ctx context.Context, jobID string, result *Result) {
	if c.store == nil || jobID == "" {
		return
	}
	stats := history.Stats{
		InputI:       result.Measured.InputI,
		InputTP:      result.Measured.InputTP,
		InputLRA:     result.Measured.InputLRA,
		InputThresh:  result.Measured.InputThresh,
		TargetOffset: result.Measured.TargetOffset,
		InputBytes:   result.InputBytes,
		OutputBytes:  result.OutputBytes,
	}
	if err := c.store.CompleteJob(ctx, jobID, result.Elapsed.Seconds(), stats); err != nil {
		c.logger.Warn("history completion skipped", logging.Args(logging.Error(err))...)
		return
	}
	if pruned, err := c.store.Prune(ctx, c.cfg.History.MaxEntries); err == nil && pruned > 0 {
		c.logger.Debug("history pruned", logging.Args(logging.Int64("removed", pruned))...)
	}
}

func (c *Cleaner) failJob(ctx context.Context, jobID string, cause error) {
	if c.store == nil || jobID == "" {
		return
	}
	if err := c.store.FailJob(ctx, jobID, cause.Error()); err != nil {
		c.logger.Warn("history failure record skipped", logging.Args(logging.Error(err))...)
	}
}
