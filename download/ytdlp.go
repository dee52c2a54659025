package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"ytaudio/internal/timeutil"
)

// YtDlpDownloader downloads through the yt-dlp executable.
type YtDlpDownloader struct {
	executable    string
	logger        *zap.Logger
	progressEvery time.Duration
}

// NewYtDlpDownloader creates a downloader running the yt-dlp binary at executable.
func NewYtDlpDownloader(executable string, logger *zap.Logger) *YtDlpDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YtDlpDownloader{
		executable:    executable,
		logger:        logger,
		progressEvery: 2 * time.Second,
	}
}

// Command returns the configured yt-dlp command for req.
func (d *YtDlpDownloader) Command(req Request) *ytdlp.Command {
	cmd := ytdlp.New().
		SetExecutable(d.executable).
		Format(FormatSelector(req.Quality, req.AudioOnly)).
		MergeOutputFormat("mp4").
		NoPlaylist().
		Output(filepath.Join(req.OutputDir, "%(title)s.%(ext)s")).
		Print("after_move:filepath").
		NoSimulate().
		Progress()

	cmd.ProgressFunc(d.progressEvery, func(update ytdlp.ProgressUpdate) {
		d.logProgress(req, update)
	})
	return cmd
}

// Download runs yt-dlp and returns the final merged file.
func (d *YtDlpDownloader) Download(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureDir(req.OutputDir); err != nil {
		return nil, err
	}

	d.logger.Info("downloading",
		zap.String("url", req.URL),
		zap.String("kind", req.Kind()),
		zap.String("quality", string(req.Quality)),
		zap.String("target", req.OutputDir),
		zap.String("backend", "yt-dlp"),
	)

	result, err := d.Command(req).Run(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	path, err := finalPath(result.Stdout)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	if info, statErr := os.Stat(path); statErr == nil {
		res.Bytes = info.Size()
	}
	return res, nil
}

// finalPath picks the last printed path that exists on disk.
func finalPath(stdout string) (string, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNoOutput
}

func (d *YtDlpDownloader) logProgress(req Request, update ytdlp.ProgressUpdate) {
	fields := []zap.Field{
		zap.String("status", string(update.Status)),
		zap.String("percent", update.PercentString()),
	}
	if update.Filename != "" {
		fields = append(fields, zap.String("file", filepath.Base(update.Filename)))
	}
	if eta := update.ETA(); eta > 0 {
		fields = append(fields, zap.String("eta", timeutil.Humanize(eta.Seconds())))
	}
	d.logger.Info(req.Kind()+" download progress", fields...)
}
