// Package ffprobe extracts metadata from media files using the ffprobe
// command-line tool.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// ErrInvalidDuration indicates ffprobe reported no usable duration.
var ErrInvalidDuration = errors.New("duration not available")

// Chapter represents a chapter marker in a media file.
type Chapter struct {
	ID        int    `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Tags      struct {
		Title string `json:"title,omitempty"`
	} `json:"tags"`
}

// Stream represents a media stream (audio, video, subtitle, etc.)
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	CodecLongName string `json:"codec_long_name"`
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Duration      string `json:"duration,omitempty"`
}

// Format represents the container format information.
type Format struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

// ProbeResult holds the metadata extracted from a media file.
type ProbeResult struct {
	Chapters []Chapter `json:"chapters"`
	Streams  []Stream  `json:"streams"`
	Format   Format    `json:"format"`
}

// GetDuration returns the container duration in seconds, falling back to the
// longest stream duration when the container does not carry one (some webm
// files written by yt-dlp).
//
// Returns an error wrapping ErrInvalidDuration if no positive, finite
// duration is present.
func (pr *ProbeResult) GetDuration() (float64, error) {
	if pr.Format.Duration != "" {
		d, err := strconv.ParseFloat(pr.Format.Duration, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to parse '%s': %w", ErrInvalidDuration, pr.Format.Duration, err)
		}
		if !usable(d) {
			return 0, fmt.Errorf("%w: %v seconds", ErrInvalidDuration, d)
		}
		return d, nil
	}

	longest := 0.0
	for _, s := range pr.Streams {
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && usable(d) && d > longest {
			longest = d
		}
	}
	if longest == 0 {
		return 0, fmt.Errorf("%w: no duration in format or stream metadata", ErrInvalidDuration)
	}
	return longest, nil
}

// GetAudioStreams returns all audio streams from the media file.
func (pr *ProbeResult) GetAudioStreams() []Stream {
	return pr.streamsOfType("audio")
}

// GetVideoStreams returns all video streams from the media file.
func (pr *ProbeResult) GetVideoStreams() []Stream {
	return pr.streamsOfType("video")
}

func (pr *ProbeResult) streamsOfType(codecType string) []Stream {
	var streams []Stream
	for _, stream := range pr.Streams {
		if stream.CodecType == codecType {
			streams = append(streams, stream)
		}
	}
	return streams
}

// Prober runs a resolved ffprobe binary.
type Prober struct {
	path   string
	logger *zap.Logger
}

// NewProber creates a Prober for the ffprobe executable at path.
func NewProber(path string, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{path: path, logger: logger}
}

// Probe analyzes a media file and extracts its metadata.
//
// Example:
//
//	result, err := ffprobe.NewProber("/usr/bin/ffprobe", nil).Probe(ctx, "talk.m4a")
//	if err != nil {
//	    return err
//	}
//	duration, _ := result.GetDuration()
func (p *Prober) Probe(ctx context.Context, sourcePath string) (*ProbeResult, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source path cannot be empty")
	}

	args := BuildArgs(sourcePath)
	cmd := exec.CommandContext(ctx, p.path, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	result, err := ParseOutput(output)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("probed media",
		zap.String("path", sourcePath),
		zap.String("format", result.Format.FormatName),
		zap.String("duration", result.Format.Duration),
		zap.Int("streams", len(result.Streams)),
	)
	return result, nil
}

// Duration returns the duration of sourcePath in seconds.
func (p *Prober) Duration(ctx context.Context, sourcePath string) (float64, error) {
	result, err := p.Probe(ctx, sourcePath)
	if err != nil {
		return 0, err
	}
	return result.GetDuration()
}

// BuildArgs returns the ffprobe arguments used to inspect sourcePath.
//
// -v error keeps stderr limited to real problems, which end up in the
// returned error text.
func BuildArgs(sourcePath string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_chapters",
		"-show_streams",
		"-show_format",
		sourcePath,
	}
}

// ParseOutput decodes ffprobe's JSON output.
func ParseOutput(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON output: %w", err)
	}
	return &result, nil
}

func usable(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}
