package filtergraph

import (
	"fmt"
	"strconv"
	"strings"

	"voicecleaner/internal/config"
)

// Base renders the voice cleanup chain that runs before loudness
// normalization in both passes.
func Base(filters config.Filters) string {
	parts := []string{
		fmt.Sprintf("highpass=f=%d", filters.HighpassHz),
		fmt.Sprintf("lowpass=f=%d", filters.LowpassHz),
		fmt.Sprintf("anlmdn=s=%s:p=%s",
			formatFloat(filters.DenoiseStrength),
			formatFloat(filters.DenoisePatch)),
		fmt.Sprintf("agate=threshold=%sdB:ratio=%s:attack=%s:release=%s",
			formatFloat(filters.GateThresholdDB),
			formatFloat(filters.GateRatio),
			formatFloat(filters.GateAttackMs),
			formatFloat(filters.GateReleaseMs)),
		fmt.Sprintf("acompressor=threshold=%sdB:ratio=%s:attack=%s:release=%s:makeup=%s",
			formatFloat(filters.CompressorThresholdDB),
			formatFloat(filters.CompressorRatio),
			formatFloat(filters.CompressorAttackMs),
			formatFloat(filters.CompressorReleaseMs),
			formatFloat(filters.CompressorMakeupDB)),
		fmt.Sprintf("alimiter=limit=%s", formatFloat(filters.LimiterCeiling)),
	}
	return strings.Join(parts, ",")
}

// Measure renders the full measurement-pass filter: the base chain followed
// by a loudnorm stage that prints input statistics as JSON.
func Measure(cfg *config.Config) string {
	loudnorm := fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s:print_format=json",
		formatFloat(cfg.Audio.TargetI),
		formatFloat(cfg.Audio.TruePeak),
		formatFloat(cfg.Audio.LoudnessRange))
	return Base(cfg.Filters) + "," + loudnorm
}

// Apply renders the full second-pass filter. The measured values from the
// first pass are fed back so loudnorm runs in linear mode.
func Apply(cfg *config.Config, measured Measured) string {
	loudnorm := fmt.Sprintf(
		"loudnorm=I=%s:TP=%s:LRA=%s:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true:print_format=summary",
		formatFloat(cfg.Audio.TargetI),
		formatFloat(cfg.Audio.TruePeak),
		formatFloat(cfg.Audio.LoudnessRange),
		measured.InputI,
		measured.InputTP,
		measured.InputLRA,
		measured.InputThresh,
		measured.TargetOffset)
	return Base(cfg.Filters) + "," + loudnorm
}

// formatFloat renders a parameter the way ffmpeg filter options expect:
// shortest decimal form, no exponent for the magnitudes we configure.
func formatFloat(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	return formatted
}
