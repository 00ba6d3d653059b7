package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"voicecleaner/internal/cleaner"
	"voicecleaner/internal/ffmpeg"
	"voicecleaner/internal/filtergraph"
)

type cleanOptions struct {
	targetI   float64
	bitrate   string
	dryRun    bool
	jsonOut   bool
	overwrite bool
}

func bindCleanFlags(cmd *cobra.Command, opts *cleanOptions) {
	cmd.Flags().Float64Var(&opts.targetI, "target-i", 0, "Integrated loudness target in LUFS")
	cmd.Flags().StringVar(&opts.bitrate, "audio-bitrate", "", "Output audio bitrate (e.g. 192k)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the ffmpeg commands without running them")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit the result as JSON")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace the output file if it exists")
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean INPUT OUTPUT",
		Short: "Clean the dialogue track and write a new video file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(ctx, cmd, args, opts)
		},
	}

	bindCleanFlags(cmd, opts)
	return cmd
}

func runClean(cctx *commandContext, cmd *cobra.Command, args []string, opts *cleanOptions) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("target-i") {
		cfg.Audio.TargetI = opts.targetI
	}
	if cmd.Flags().Changed("audio-bitrate") {
		cfg.Audio.Bitrate = strings.TrimSpace(opts.bitrate)
	}
	if cmd.Flags().Changed("target-i") || cmd.Flags().Changed("audio-bitrate") {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := cctx.ensureLogger()
	if err != nil {
		return err
	}

	request := cleaner.Request{
		Input:     args[0],
		Output:    args[1],
		Overwrite: opts.overwrite,
	}

	if opts.dryRun {
		c := cleaner.New(cfg, logger, nil)
		plan, err := c.Plan(cmd.Context(), request)
		if err != nil {
			return err
		}
		return printPlan(cmd, plan, opts.jsonOut)
	}

	store, err := cctx.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	c := cleaner.New(cfg, logger, store)

	var bar *progressbar.ProgressBar
	if !opts.jsonOut && isatty.IsTerminal(os.Stderr.Fd()) {
		request.Progress = func(update ffmpeg.Progress) {
			if bar == nil {
				bar = newCleanProgressBar(update)
			}
			if update.Percent >= 0 {
				_ = bar.Set(int(update.Percent))
			} else {
				_ = bar.Add(1)
			}
			if update.Speed > 0 {
				bar.Describe(fmt.Sprintf("cleaning (%.1fx)", update.Speed))
			}
			if update.Done {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	result, err := c.Clean(cmd.Context(), request)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(cmd, newCleanReport(cfg.Audio.TargetI, cfg.Audio.Bitrate, result))
	}
	printCleanResult(cmd, cfg.Audio.TargetI, cfg.Audio.Bitrate, result)
	return nil
}

func newCleanProgressBar(update ffmpeg.Progress) *progressbar.ProgressBar {
	max := int64(100)
	if update.Percent < 0 {
		max = -1
	}
	return progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("cleaning"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
	)
}

type cleanReport struct {
	JobID           string               `json:"job_id,omitempty"`
	Input           string               `json:"input"`
	Output          string               `json:"output"`
	StreamIndex     int                  `json:"stream_index"`
	Stream          string               `json:"stream"`
	Measured        filtergraph.Measured `json:"measured"`
	TargetI         float64              `json:"target_i"`
	Bitrate         string               `json:"bitrate"`
	DurationSeconds float64              `json:"duration_seconds"`
	InputBytes      int64                `json:"input_bytes"`
	OutputBytes     int64                `json:"output_bytes"`
	ElapsedSeconds  float64              `json:"elapsed_seconds"`
}

func newCleanReport(targetI float64, bitrate string, result *cleaner.Result) cleanReport {
	return cleanReport{
		JobID:           result.JobID,
		Input:           result.Input,
		Output:          result.Output,
		StreamIndex:     result.Selection.Index,
		Stream:          result.Selection.Label(),
		Measured:        result.Measured,
		TargetI:         targetI,
		Bitrate:         bitrate,
		DurationSeconds: result.Duration,
		InputBytes:      result.InputBytes,
		OutputBytes:     result.OutputBytes,
		ElapsedSeconds:  result.Elapsed.Seconds(),
	}
}

func printCleanResult(cmd *cobra.Command, targetI float64, bitrate string, result *cleaner.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cleaned %s -> %s\n", result.Input, result.Output)
	fmt.Fprintf(out, "  Dialogue stream: %s\n", result.Selection.Label())
	fmt.Fprintf(out, "  Measured: I=%s LUFS, TP=%s dBTP, LRA=%s LU\n",
		result.Measured.InputI, result.Measured.InputTP, result.Measured.InputLRA)
	fmt.Fprintf(out, "  Target: %.1f LUFS at %s\n", targetI, bitrate)
	fmt.Fprintf(out, "  Size: %s -> %s\n", formatBytes(result.InputBytes), formatBytes(result.OutputBytes))
	fmt.Fprintf(out, "  Elapsed: %s\n", result.Elapsed.Round(100*time.Millisecond))
}

func printPlan(cmd *cobra.Command, plan *cleaner.Plan, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, struct {
			FFmpeg      string   `json:"ffmpeg"`
			Stream      string   `json:"stream"`
			MeasureArgs []string `json:"measure_args"`
			CleanArgs   []string `json:"clean_args"`
		}{
			FFmpeg:      plan.FFmpegBinary,
			Stream:      plan.Selection.Label(),
			MeasureArgs: plan.MeasureArgs,
			CleanArgs:   plan.CleanArgs,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Dry run; no files were written.")
	fmt.Fprintf(out, "Dialogue stream: %s\n", plan.Selection.Label())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Pass 1 (measure loudness):")
	fmt.Fprintf(out, "  %s %s\n", plan.FFmpegBinary, strings.Join(plan.MeasureArgs, " "))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Pass 2 (clean and normalize):")
	fmt.Fprintf(out, "  %s %s\n", plan.FFmpegBinary, strings.Join(plan.CleanArgs, " "))
	return nil
}
