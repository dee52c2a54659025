// Package timeutil provides time formatting utilities for ffmpeg arguments and logs.
package timeutil

import (
	"fmt"
	"math"
)

// FormatSeconds converts seconds to HH:MM:SS.mmm format for ffmpeg.
//
// Used for the -ss (seek start) and -t (length) parameters. The value is
// rounded to the nearest millisecond before it is split into fields, so a
// value like 59.9996 renders as "00:01:00.000" rather than "00:00:60.000".
// Negative values are clamped to zero.
//
// Example:
//
//	FormatSeconds(0)       // "00:00:00.000"
//	FormatSeconds(2100)    // "00:35:00.000"
//	FormatSeconds(3661.5)  // "01:01:01.500"
func FormatSeconds(seconds float64) string {
	ms := toMillis(seconds)
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	secs := (ms % 60_000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, frac)
}

// Humanize renders a duration in seconds for log and summary output,
// e.g. "35m00s" or "2h00m00s". Fractions are rounded to whole seconds.
func Humanize(seconds float64) string {
	total := toMillis(seconds) / 1000
	if toMillis(seconds)%1000 >= 500 {
		total++
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

func toMillis(seconds float64) int64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}
