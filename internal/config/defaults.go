package config

const (
	defaultLogDir    = "~/.local/share/voice-cleaner/logs"
	defaultHistoryDB = "~/.local/share/voice-cleaner/history.db"

	defaultTargetI       = -16.0
	defaultTruePeak      = -1.5
	defaultLoudnessRange = 11.0
	defaultBitrate       = "192k"
	defaultCodec         = "aac"
	defaultLanguage      = "en"

	defaultHighpassHz            = 90
	defaultLowpassHz             = 8000
	defaultDenoiseStrength       = 0.00005
	defaultDenoisePatch          = 0.05
	defaultGateThresholdDB       = -35
	defaultGateRatio             = 2
	defaultGateAttackMs          = 10
	defaultGateReleaseMs         = 120
	defaultCompressorThresholdDB = -18
	defaultCompressorRatio       = 3
	defaultCompressorAttackMs    = 5
	defaultCompressorReleaseMs   = 80
	defaultCompressorMakeupDB    = 4
	defaultLimiterCeiling        = 0.98

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultHistoryMaxEntries = 500

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Audio: Audio{
			TargetI:       defaultTargetI,
			TruePeak:      defaultTruePeak,
			LoudnessRange: defaultLoudnessRange,
			Bitrate:       defaultBitrate,
			Codec:         defaultCodec,
			Language:      defaultLanguage,
		},
		Filters: Filters{
			HighpassHz:            defaultHighpassHz,
			LowpassHz:             defaultLowpassHz,
			DenoiseStrength:       defaultDenoiseStrength,
			DenoisePatch:          defaultDenoisePatch,
			GateThresholdDB:       defaultGateThresholdDB,
			GateRatio:             defaultGateRatio,
			GateAttackMs:          defaultGateAttackMs,
			GateReleaseMs:         defaultGateReleaseMs,
			CompressorThresholdDB: defaultCompressorThresholdDB,
			CompressorRatio:       defaultCompressorRatio,
			CompressorAttackMs:    defaultCompressorAttackMs,
			CompressorReleaseMs:   defaultCompressorReleaseMs,
			CompressorMakeupDB:    defaultCompressorMakeupDB,
			LimiterCeiling:        defaultLimiterCeiling,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
