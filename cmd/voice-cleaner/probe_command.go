package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voicecleaner/internal/media/audio"
	"voicecleaner/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe INPUT",
		Short: "Inspect a video file and show which audio stream would be cleaned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			probe, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}
			selection := audio.Select(probe.Streams, cfg.Audio.Language)

			if jsonOut {
				return writeJSON(cmd, struct {
					Path            string           `json:"path"`
					DurationSeconds float64          `json:"duration_seconds"`
					SelectedIndex   int              `json:"selected_index"`
					Streams         []ffprobe.Stream `json:"streams"`
				}{
					Path:            args[0],
					DurationSeconds: probe.DurationSeconds(),
					SelectedIndex:   selection.Index,
					Streams:         probe.Streams,
				})
			}

			rows := make([][]string, 0, len(probe.Streams))
			for _, stream := range probe.Streams {
				marker := ""
				if selection.Found() && stream.Index == selection.Index {
					marker = "*"
				}
				rows = append(rows, []string{
					marker,
					strconv.Itoa(stream.Index),
					strings.ToLower(stream.CodecType),
					stream.CodecName,
					channelSummary(stream),
					stream.Tag("language"),
					stream.Tag("title"),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%.1fs)\n", args[0], probe.DurationSeconds())
			fmt.Fprintln(out, renderTable(
				[]string{"", "#", "Type", "Codec", "Channels", "Lang", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if selection.Found() {
				fmt.Fprintf(out, "* dialogue stream selected for cleaning\n")
			} else {
				fmt.Fprintln(out, "No audio stream found; this file cannot be cleaned.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the probe result as JSON")
	return cmd
}

func channelSummary(stream ffprobe.Stream) string {
	if !strings.EqualFold(stream.CodecType, "audio") {
		return ""
	}
	if stream.ChannelLayout != "" {
		return stream.ChannelLayout
	}
	if stream.Channels > 0 {
		return strconv.Itoa(stream.Channels) + "ch"
	}
	return ""
}
