// Package ffmpeg parses the machine-readable progress stream ffmpeg writes
// when started with "-progress pipe:2 -nostats".
package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ytaudio/models"
)

// Progress stream keys.
const (
	keyOutTimeUs = "out_time_us"
	keyOutTimeMs = "out_time_ms" // microseconds as well, despite the name
	keyOutTime   = "out_time"
	keyTotalSize = "total_size"
	keyBitrate   = "bitrate"
	keySpeed     = "speed"
	keyProgress  = "progress"
)

// ProgressParser turns ffmpeg progress lines into TranscodeProgress updates.
//
// ffmpeg emits blocks of key=value lines terminated by "progress=continue" or
// "progress=end". Each block is reported through the callback once.
type ProgressParser struct {
	// tail keeps the last non-progress lines for error messages
	tail    []string
	maxTail int
}

// NewProgressParser creates a new parser.
func NewProgressParser() *ProgressParser {
	return &ProgressParser{maxTail: 10}
}

// ParseLine applies a single line to progress. It returns true when the line
// closes a progress block.
func (pp *ProgressParser) ParseLine(line string, progress *models.TranscodeProgress) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		pp.remember(line)
		return false
	}
	value = strings.TrimSpace(value)

	switch key {
	case keyOutTimeUs, keyOutTimeMs:
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			progress.SetOutTime(float64(us) / 1_000_000)
		}
	case keyOutTime:
		// Only used when the microsecond keys are missing (older ffmpeg).
		if progress.OutTime == 0 {
			if secs, ok := clockToSeconds(value); ok {
				progress.SetOutTime(secs)
			}
		}
	case keyTotalSize:
		if size, err := strconv.ParseInt(value, 10, 64); err == nil {
			progress.TotalSize = size
		}
	case keyBitrate:
		if value != "N/A" {
			progress.Bitrate = value
		}
	case keySpeed:
		if speed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			progress.Speed = speed
		}
	case keyProgress:
		if value == "end" {
			progress.SetOutTime(progress.TotalDuration)
		}
		progress.State = models.ProgressStateRunning
		return true
	default:
		if !isProgressKey(key) {
			pp.remember(line)
		}
	}

	return false
}

// StreamProgress reads ffmpeg's stderr until EOF, invoking callback after
// every completed progress block.
func (pp *ProgressParser) StreamProgress(reader io.Reader, progress *models.TranscodeProgress, callback models.ProgressCallback) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if pp.ParseLine(scanner.Text(), progress) && callback != nil {
			callback(progress)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ffmpeg output: %w", err)
	}
	return nil
}

// Tail returns the last diagnostic (non-progress) lines ffmpeg printed.
func (pp *ProgressParser) Tail() string {
	return strings.Join(pp.tail, "\n")
}

func (pp *ProgressParser) remember(line string) {
	pp.tail = append(pp.tail, line)
	if len(pp.tail) > pp.maxTail {
		pp.tail = pp.tail[len(pp.tail)-pp.maxTail:]
	}
}

// isProgressKey reports keys ffmpeg writes to the progress stream that the
// parser does not track.
func isProgressKey(key string) bool {
	switch key {
	case "frame", "fps", "dup_frames", "drop_frames":
		return true
	}
	return strings.HasPrefix(key, "stream_")
}

// clockToSeconds converts ffmpeg time format (HH:MM:SS.micro) to seconds.
func clockToSeconds(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || hours < 0 {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}
