package cleaner

import (
	"context"
	"fmt"

	"voicecleaner/internal/ffmpeg"
	"voicecleaner/internal/fileutil"
	"voicecleaner/internal/filtergraph"
	"voicecleaner/internal/media/audio"
	"voicecleaner/internal/media/ffprobe"
)

// Plan describes the ffmpeg invocations a clean run would execute, for dry
// runs. The apply-pass filter carries placeholders where the measured
// loudness values would go, since those only exist after the first pass.
type Plan struct {
	FFmpegBinary string
	Selection    audio.Selection
	MeasureArgs  []string
	CleanArgs    []string
}

// Plan probes the input and returns the commands a clean run would execute.
func (c *Cleaner) Plan(ctx context.Context, req Request) (*Plan, error) {
	input, output, err := c.resolvePaths(req)
	if err != nil {
		return nil, err
	}

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

	placeholder := filtergraph.Measured{
		InputI:       "<measured_i>",
		InputTP:      "<measured_tp>",
		InputLRA:     "<measured_lra>",
		InputThresh:  "<measured_thresh>",
		TargetOffset: "<target_offset>",
	}

	return &Plan{
		FFmpegBinary: c.runner.Binary(),
		Selection:    selection,
		MeasureArgs: c.runner.MeasureArgs(ffmpeg.MeasurePlan{
			Input:        input,
			AudioOrdinal: ordinal,
			Filter:       filtergraph.Measure(c.cfg),
		}),
		CleanArgs: c.runner.CleanArgs(ffmpeg.CleanPlan{
			Input:           input,
			Output:          fileutil.TempOutputPath(output),
			AudioOrdinal:    ordinal,
			Filter:          filtergraph.Apply(c.cfg, placeholder),
			Codec:           c.cfg.Audio.Codec,
			Bitrate:         c.cfg.Audio.Bitrate,
			DurationSeconds: probe.DurationSeconds(),
		}),
	}, nil
}
