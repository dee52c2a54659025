package models

import (
	"fmt"
	"time"
)

// TranscodeProgress represents live metrics reported by ffmpeg while it
// re-encodes a file.
type TranscodeProgress struct {
	// Position in the source
	OutTime float64 // Seconds of output written so far

	// Performance metrics
	Bitrate string  // Current bitrate (e.g., "192.0kbits/s")
	Speed   float64 // Multiplier of realtime (e.g., 34.5)

	// Size information
	TotalSize int64 // Bytes written so far

	// Progress calculation
	TotalDuration float64 // Duration of the source in seconds
	Percent       float64 // 0-100

	State     ProgressState
	StartTime time.Time
	UpdatedAt time.Time
}

// ProgressState represents the current state of a transcoding run
type ProgressState string

const (
	ProgressStateStarting  ProgressState = "starting"
	ProgressStateRunning   ProgressState = "running"
	ProgressStateCompleted ProgressState = "completed"
	ProgressStateFailed    ProgressState = "failed"
)

// ProgressCallback receives progress updates while ffmpeg runs.
type ProgressCallback func(progress *TranscodeProgress)

// NewTranscodeProgress creates a progress tracker for a source of the given duration.
func NewTranscodeProgress(totalDuration float64) *TranscodeProgress {
	now := time.Now()
	return &TranscodeProgress{
		TotalDuration: totalDuration,
		State:         ProgressStateStarting,
		StartTime:     now,
		UpdatedAt:     now,
	}
}

// SetOutTime records the output position and recomputes the percentage.
func (tp *TranscodeProgress) SetOutTime(seconds float64) {
	tp.OutTime = seconds
	if tp.TotalDuration > 0 {
		tp.Percent = (seconds / tp.TotalDuration) * 100
		if tp.Percent > 100 {
			tp.Percent = 100
		}
	}
	tp.UpdatedAt = time.Now()
}

// EstimatedTimeRemaining calculates ETA from the elapsed time and percentage.
func (tp *TranscodeProgress) EstimatedTimeRemaining() time.Duration {
	if tp.Percent <= 0 {
		return 0
	}

	elapsed := tp.UpdatedAt.Sub(tp.StartTime)
	totalEstimated := time.Duration(float64(elapsed) / (tp.Percent / 100))
	remaining := totalEstimated - elapsed

	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatSummary returns a one-line summary for logs.
func (tp *TranscodeProgress) FormatSummary() string {
	return fmt.Sprintf(
		"%.1f%% | speed %.2fx | bitrate %s | %d bytes | eta %s",
		tp.Percent,
		tp.Speed,
		tp.Bitrate,
		tp.TotalSize,
		formatETA(tp.EstimatedTimeRemaining()),
	)
}

func formatETA(d time.Duration) string {
	if d == 0 {
		return "calculating..."
	}
	return d.Round(time.Second).String()
}
