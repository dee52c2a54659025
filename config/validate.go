package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ytaudio/command/audio"
	"ytaudio/download"
	"ytaudio/internal/logger"
	"ytaudio/segmenter"
)

// Normalize fixes recoverable problems in place and expands "~" in paths.
// Every change is recorded in Warnings.
func (c *Config) Normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))

	q, ok := download.ParseQuality(c.Quality)
	if !ok {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid quality: %s. Using 'best' instead", c.Quality))
	}
	c.Quality = string(q)

	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	c.OutputDir = ExpandHome(c.OutputDir)
	c.Split.OutputDir = ExpandHome(c.Split.OutputDir)
	c.Input = ExpandHome(c.Input)
	c.SaveConfig = ExpandHome(c.SaveConfig)
	c.Tools.FFmpeg = ExpandHome(c.Tools.FFmpeg)
	c.Tools.FFprobe = ExpandHome(c.Tools.FFprobe)
	c.Tools.YtDlp = ExpandHome(c.Tools.YtDlp)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	// Source. Saving settings does not need one.
	switch {
	case c.SaveConfig != "":
	case c.URL == "" && c.Input == "":
		errors = append(errors, "a URL or -input file is required")
	case c.URL != "" && c.Input != "":
		errors = append(errors, "URL and -input are mutually exclusive")
	case c.Input != "":
		if info, err := os.Stat(c.Input); err != nil {
			errors = append(errors, fmt.Sprintf("input file does not exist: %s", c.Input))
		} else if info.IsDir() {
			errors = append(errors, fmt.Sprintf("input is a directory: %s", c.Input))
		}
		if !c.Split.Enabled && !c.Audio.Reencode {
			errors = append(errors, "-input needs -split or -reencode")
		}
	}

	if c.OutputDir == "" {
		errors = append(errors, "output directory is required")
	}

	if _, ok := download.ParseQuality(c.Quality); !ok {
		errors = append(errors, fmt.Sprintf("invalid quality '%s', must be one of: %s", c.Quality, download.QualityNames()))
	}

	if !IsValidBackend(c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s', must be one of: %s",
			c.Backend, strings.Join(BackendValues(), ", ")))
	}

	if c.Split.Enabled {
		if err := c.Split.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("split config: %v", err))
		}
	}

	if c.Audio.Reencode {
		if err := c.Audio.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("audio config: %v", err))
		}
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks if split configuration is valid
func (sc *SplitConfig) Validate() error {
	if !(sc.ChunkDuration >= segmenter.MinChunkLength) || math.IsInf(sc.ChunkDuration, 0) {
		return fmt.Errorf("chunk duration must be at least %d seconds, got %g",
			segmenter.MinChunkLength, sc.ChunkDuration)
	}
	return nil
}

// Validate checks if audio configuration is valid
func (ac *AudioConfig) Validate() error {
	var errors []string

	if ac.Codec == "" {
		errors = append(errors, "codec is required")
	} else if !audio.IsSupportedCodec(ac.Codec) {
		errors = append(errors, fmt.Sprintf("unsupported codec '%s', must be one of: %s",
			ac.Codec, strings.Join(audio.Codecs(), ", ")))
	}

	if ac.Bitrate == "" && !audio.IsLossless(ac.Codec) {
		errors = append(errors, "bitrate is required")
	}

	if ac.SampleRate <= 0 {
		errors = append(errors, "sample rate must be positive")
	}

	if ac.Channels <= 0 {
		errors = append(errors, "channels must be positive")
	} else if ac.Channels > 8 {
		errors = append(errors, "channels cannot exceed 8")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}
