package config

import (
	"errors"
	"fmt"
	"regexp"
)

// bitratePattern matches the ffmpeg bitrate shorthand, e.g. "192k" or "1m".
var bitratePattern = regexp.MustCompile(`^[0-9]+[km]?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAudio() error {
	// Ranges mirror what ffmpeg's loudnorm filter accepts.
	if c.Audio.TargetI < -70 || c.Audio.TargetI > -5 {
		return fmt.Errorf("audio.target_i must be between -70 and -5 LUFS, got %g", c.Audio.TargetI)
	}
	if c.Audio.TruePeak < -9 || c.Audio.TruePeak > 0 {
		return fmt.Errorf("audio.true_peak must be between -9 and 0 dBTP, got %g", c.Audio.TruePeak)
	}
	if c.Audio.LoudnessRange < 1 || c.Audio.LoudnessRange > 50 {
		return fmt.Errorf("audio.loudness_range must be between 1 and 50 LU, got %g", c.Audio.LoudnessRange)
	}
	if !bitratePattern.MatchString(c.Audio.Bitrate) {
		return fmt.Errorf("audio.bitrate must look like \"192k\", got %q", c.Audio.Bitrate)
	}
	if c.Audio.Codec == "" {
		return errors.New("audio.codec must be set")
	}
	return nil
}

func (c *Config) validateFilters() error {
	if c.Filters.HighpassHz <= 0 {
		return errors.New("filters.highpass_hz must be positive")
	}
	if c.Filters.LowpassHz <= c.Filters.HighpassHz {
		return fmt.Errorf("filters.lowpass_hz (%d) must be above filters.highpass_hz (%d)",
			c.Filters.LowpassHz, c.Filters.HighpassHz)
	}
	if c.Filters.DenoiseStrength <= 0 {
		return errors.New("filters.denoise_strength must be positive")
	}
	if c.Filters.DenoisePatch <= 0 {
		return errors.New("filters.denoise_patch must be positive")
	}
	if c.Filters.GateRatio < 1 {
		return errors.New("filters.gate_ratio must be at least 1")
	}
	if c.Filters.CompressorRatio < 1 {
		return errors.New("filters.compressor_ratio must be at least 1")
	}
	if c.Filters.GateAttackMs <= 0 || c.Filters.GateReleaseMs <= 0 {
		return errors.New("filters.gate attack/release must be positive")
	}
	if c.Filters.CompressorAttackMs <= 0 || c.Filters.CompressorReleaseMs <= 0 {
		return errors.New("filters.compressor attack/release must be positive")
	}
	if c.Filters.LimiterCeiling <= 0 || c.Filters.LimiterCeiling > 1 {
		return fmt.Errorf("filters.limiter_ceiling must be in (0, 1], got %g", c.Filters.LimiterCeiling)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.MaxEntries < 0 {
		return errors.New("history.max_entries must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
