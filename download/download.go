// Package download fetches a YouTube video (or its audio) into a local
// directory. Two backends exist: one drives the yt-dlp executable, the other
// talks to YouTube directly.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrNoFormat is returned when no downloadable format matches the request.
	ErrNoFormat = errors.New("no matching format")
	// ErrNoOutput is returned when a download finished without a file on disk.
	ErrNoOutput = errors.New("download produced no output file")
)

// Downloader fetches one URL.
type Downloader interface {
	Download(ctx context.Context, req Request) (*Result, error)
}

// Request describes a single download.
type Request struct {
	URL       string
	OutputDir string
	Quality   Quality
	AudioOnly bool
}

// Validate checks the request is complete.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("url cannot be empty")
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if _, ok := ParseQuality(string(r.Quality)); !ok {
		return fmt.Errorf("invalid quality %q", r.Quality)
	}
	return nil
}

// Kind returns "audio" or "video", for messages.
func (r Request) Kind() string {
	if r.AudioOnly {
		return "audio"
	}
	return "video"
}

// Result describes the file a download produced.
type Result struct {
	Path     string
	Title    string
	Duration time.Duration // zero when the backend does not report it
	Bytes    int64
}

// ensureDir creates dir and its parents if missing.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}

// SanitizeFilename turns a video title into a safe file name stem.
func SanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	name := strings.Trim(strings.TrimSpace(b.String()), ".")
	if name == "" {
		return "video"
	}
	if len(name) > 200 {
		name = strings.ToValidUTF8(name[:200], "")
	}
	return name
}
