package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigPath   = "~/.config/clipper/config.toml"
	defaultLogDir       = "~/.local/share/clipper/logs"
	defaultLibraryDB    = "~/.local/share/clipper/library.db"
	defaultAPIBind      = "127.0.0.1:7491"
	defaultFFmpeg       = "ffmpeg"
	defaultFFprobe      = "ffprobe"
	defaultThresholdDB  = -50
	defaultVideoCodec   = "libx264"
	defaultPreset       = "fast"
	defaultCRF          = 23
	defaultAudioCodec   = "aac"
	defaultAudioBitrate = "192k"
	defaultExtension    = ".mp4"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultLogRetention = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:   defaultTempDir(),
			LogDir:    defaultLogDir,
			LibraryDB: defaultLibraryDB,
			APIBind:   defaultAPIBind,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			Warmup:  true,
		},
		Analysis: Analysis{
			StartOffset: 0,
			ThresholdDB: defaultThresholdDB,
		},
		Export: Export{
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			Extension:    defaultExtension,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), "clipper")
}
