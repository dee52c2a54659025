package config

import (
	"ytaudio/command/audio"
	"ytaudio/segmenter"
	"ytaudio/tools"
)

// Backend names accepted by the backend option.
const (
	BackendYtDlp  = "ytdlp"
	BackendNative = "native"
)

// DefaultOutputDir is where downloads land when no directory is given.
const DefaultOutputDir = "~/Downloads"

// Config holds all downloader configuration options
type Config struct {
	// Source: exactly one of URL or Input
	URL   string `yaml:"url,omitempty" env:"URL"`
	Input string `yaml:"input,omitempty" env:"INPUT"` // local file, skips the download

	// Download settings
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Quality   string `yaml:"quality" env:"QUALITY"` // best, 1080p, ... 144p
	AudioOnly bool   `yaml:"audio_only" env:"AUDIO_ONLY"`
	Backend   string `yaml:"backend" env:"BACKEND"` // "ytdlp" or "native"

	// Post-processing
	Split SplitConfig `yaml:"split" envPrefix:"SPLIT_"`
	Audio AudioConfig `yaml:"audio" envPrefix:"AUDIO_"`

	// External programs
	Tools ToolsConfig `yaml:"tools" envPrefix:"TOOLS_"`

	// Behavioral flags
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	Verbose  bool   `yaml:"verbose" env:"VERBOSE"` // Debug logging with callers
	DryRun   bool   `yaml:"dry_run" env:"DRY_RUN"` // Show the plan without running it

	// Set from the command line only
	ShowVersion bool     `yaml:"-"`
	SaveConfig  string   `yaml:"-"` // write the effective settings here and exit
	ConfigFile  string   `yaml:"-"` // file the values were loaded from, if any
	Warnings    []string `yaml:"-"` // non-fatal problems fixed during loading
}

// SplitConfig holds settings for cutting the result into parts
type SplitConfig struct {
	Enabled        bool    `yaml:"enabled" env:"ENABLED"`
	ChunkDuration  float64 `yaml:"chunk_duration" env:"CHUNK_DURATION"`   // seconds per part
	OutputDir      string  `yaml:"output_dir" env:"OUTPUT_DIR"`           // empty = next to the input
	CleanupPartial bool    `yaml:"cleanup_partial" env:"CLEANUP_PARTIAL"` // remove parts after a failure
}

// AudioConfig holds audio re-encoding settings
type AudioConfig struct {
	Reencode   bool   `yaml:"reencode" env:"REENCODE"`
	Codec      string `yaml:"codec" env:"CODEC"`             // e.g., "libmp3lame", "aac", "libopus"
	Bitrate    string `yaml:"bitrate" env:"BITRATE"`         // e.g., "128k", "192k", "320k"
	SampleRate int    `yaml:"sample_rate" env:"SAMPLE_RATE"` // e.g., 48000, 44100
	Channels   int    `yaml:"channels" env:"CHANNELS"`       // 1 (mono), 2 (stereo)
	KeepSource bool   `yaml:"keep_source" env:"KEEP_SOURCE"` // keep the downloaded file
}

// ToolsConfig holds explicit program locations. Empty means search PATH.
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg" env:"FFMPEG"`
	FFprobe string `yaml:"ffprobe" env:"FFPROBE"`
	YtDlp   string `yaml:"yt_dlp" env:"YT_DLP"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		Quality:   "best",
		AudioOnly: false,
		Backend:   BackendYtDlp,

		Split: SplitConfig{
			Enabled:        false,
			ChunkDuration:  segmenter.DefaultChunkLength, // 35 minutes
			OutputDir:      "",
			CleanupPartial: false,
		},

		Audio: AudioConfig{
			Reencode:   false,
			Codec:      audio.DefaultCodec,
			Bitrate:    audio.DefaultBitrate,
			SampleRate: audio.DefaultSampleRate,
			Channels:   audio.DefaultChannels,
			KeepSource: false,
		},

		LogLevel: "info",
	}
}

// Copy creates a deep copy of the config
func (c *Config) Copy() *Config {
	copy := *c
	copy.Warnings = append([]string(nil), c.Warnings...)
	return &copy
}

// BackendValues returns valid backend values
func BackendValues() []string {
	return []string{BackendYtDlp, BackendNative}
}

// IsValidBackend checks if backend is valid
func IsValidBackend(backend string) bool {
	for _, valid := range BackendValues() {
		if backend == valid {
			return true
		}
	}
	return false
}

// NeedsDownload reports whether the run starts from a URL.
func (c *Config) NeedsDownload() bool {
	return c.Input == ""
}

// ToolRequirements returns the external programs this configuration uses.
func (c *Config) ToolRequirements() tools.Requirements {
	postProcess := c.Split.Enabled || c.Audio.Reencode
	return tools.Requirements{
		FFmpeg:  postProcess,
		FFprobe: postProcess,
		YtDlp:   c.NeedsDownload() && c.Backend == BackendYtDlp,
	}
}

// ToolPaths returns the configured program locations.
func (c *Config) ToolPaths() tools.Paths {
	return tools.Paths{
		FFmpeg:  c.Tools.FFmpeg,
		FFprobe: c.Tools.FFprobe,
		YtDlp:   c.Tools.YtDlp,
	}
}
