package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Audio contains the loudness target and output encoding settings.
type Audio struct {
	TargetI       float64 `toml:"target_i"`
	TruePeak      float64 `toml:"true_peak"`
	LoudnessRange float64 `toml:"loudness_range"`
	Bitrate       string  `toml:"bitrate"`
	Codec         string  `toml:"codec"`
	Language      string  `toml:"language"`
}

// Filters contains the voice cleanup filter chain parameters.
type Filters struct {
	HighpassHz            int     `toml:"highpass_hz"`
	LowpassHz             int     `toml:"lowpass_hz"`
	DenoiseStrength       float64 `toml:"denoise_strength"`
	DenoisePatch          float64 `toml:"denoise_patch"`
	GateThresholdDB       float64 `toml:"gate_threshold_db"`
	GateRatio             float64 `toml:"gate_ratio"`
	GateAttackMs          float64 `toml:"gate_attack_ms"`
	GateReleaseMs         float64 `toml:"gate_release_ms"`
	CompressorThresholdDB float64 `toml:"compressor_threshold_db"`
	CompressorRatio       float64 `toml:"compressor_ratio"`
	CompressorAttackMs    float64 `toml:"compressor_attack_ms"`
	CompressorReleaseMs   float64 `toml:"compressor_release_ms"`
	CompressorMakeupDB    float64 `toml:"compressor_makeup_db"`
	LimiterCeiling        float64 `toml:"limiter_ceiling"`
}

// Tools contains external binary configuration.
type Tools struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// History contains job history retention settings.
type History struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Config encapsulates all configuration values for voice-cleaner.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Audio   Audio   `toml:"audio"`
	Filters Filters `toml:"filters"`
	Tools   Tools   `toml:"tools"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// FFmpegBinary returns the configured ffmpeg command, defaulting to "ffmpeg".
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.Tools.FFmpegBinary); binary != "" {
		return binary
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the configured ffprobe command, defaulting to "ffprobe".
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Tools.FFprobeBinary); binary != "" {
		return binary
	}
	return defaultFFprobeBinary
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voice-cleaner/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The returned bool
// reports whether a config file actually existed; defaults are used otherwise.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("VOICE_CLEANER_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voice-cleaner.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories voice-cleaner writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.HistoryDB) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	cleaned := strings.TrimSpace(pathValue)
	if cleaned == "" {
		return "", nil
	}
	if cleaned == "~" || strings.HasPrefix(cleaned, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if cleaned == "~" {
			cleaned = home
		} else {
			cleaned = filepath.Join(home, cleaned[2:])
		}
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", pathValue, err)
	}
	return abs, nil
}
