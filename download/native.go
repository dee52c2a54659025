package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// NativeDownloader downloads a single progressive or audio stream directly
// from YouTube, without any external program.
type NativeDownloader struct {
	client        *youtube.Client
	logger        *zap.Logger
	progressEvery time.Duration
}

// NewNativeDownloader creates a downloader. timeout bounds each HTTP request;
// zero means no limit.
func NewNativeDownloader(timeout time.Duration, logger *zap.Logger) *NativeDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeDownloader{
		client:        &youtube.Client{HTTPClient: &http.Client{Timeout: timeout}},
		logger:        logger,
		progressEvery: 2 * time.Second,
	}
}

// Download resolves the video, picks a format and streams it to
// <OutputDir>/<title>.mp4.
func (d *NativeDownloader) Download(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	video, err := d.client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("resolve video %s: %w", req.URL, err)
	}

	format, err := selectFormat(video.Formats, req.Quality.Height(), req.AudioOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", video.Title, err)
	}

	if err := ensureDir(req.OutputDir); err != nil {
		return nil, err
	}
	path := filepath.Join(req.OutputDir, SanitizeFilename(video.Title)+".mp4")

	d.logger.Info("downloading",
		zap.String("url", req.URL),
		zap.String("title", video.Title),
		zap.String("kind", req.Kind()),
		zap.Int("itag", format.ItagNo),
		zap.String("mime", format.MimeType),
		zap.String("target", req.OutputDir),
		zap.String("backend", "native"),
	)

	written, err := d.fetch(ctx, video, format, path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if written == 0 {
		os.Remove(path)
		return nil, ErrNoOutput
	}

	return &Result{
		Path:     path,
		Title:    video.Title,
		Duration: video.Duration,
		Bytes:    written,
	}, nil
}

func (d *NativeDownloader) fetch(ctx context.Context, video *youtube.Video, format *youtube.Format, path string) (int64, error) {
	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	pw := &progressWriter{total: size, every: d.progressEvery, logger: d.logger, start: time.Now()}
	written, err := io.Copy(io.MultiWriter(file, pw), stream)
	if err != nil {
		if ctx.Err() != nil {
			return written, fmt.Errorf("download interrupted: %w", ctx.Err())
		}
		return written, fmt.Errorf("download failed after %d bytes: %w", written, err)
	}
	if err := file.Sync(); err != nil {
		return written, fmt.Errorf("flush %s: %w", path, err)
	}
	return written, nil
}

// selectFormat picks the best audio-only stream, or the tallest progressive
// mp4 stream not exceeding maxHeight (0 means unlimited). Bitrate breaks ties.
func selectFormat(formats youtube.FormatList, maxHeight int, audioOnly bool) (*youtube.Format, error) {
	var candidates []*youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		if audioOnly {
			if strings.HasPrefix(f.MimeType, "audio/mp4") {
				candidates = append(candidates, f)
			}
			continue
		}
		if !strings.HasPrefix(f.MimeType, "video/mp4") {
			continue
		}
		if maxHeight > 0 && f.Height > maxHeight {
			continue
		}
		candidates = append(candidates, f)
	}

	if len(candidates) == 0 {
		if audioOnly {
			return nil, fmt.Errorf("%w: no audio/mp4 stream", ErrNoFormat)
		}
		if maxHeight > 0 {
			return nil, fmt.Errorf("%w: no progressive mp4 stream at or below %dp", ErrNoFormat, maxHeight)
		}
		return nil, fmt.Errorf("%w: no progressive mp4 stream", ErrNoFormat)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Height != candidates[j].Height {
			return candidates[i].Height > candidates[j].Height
		}
		return candidates[i].Bitrate > candidates[j].Bitrate
	})
	return candidates[0], nil
}

// progressWriter logs download progress at most once per interval.
type progressWriter struct {
	total   int64
	written int64
	every   time.Duration
	last    time.Time
	start   time.Time
	logger  *zap.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if time.Since(p.last) >= p.every {
		p.last = time.Now()
		fields := []zap.Field{zap.Int64("bytes", p.written)}
		if p.total > 0 {
			fields = append(fields, zap.String("percent", fmt.Sprintf("%.1f%%", float64(p.written)/float64(p.total)*100)))
		}
		if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
			fields = append(fields, zap.String("speed", fmt.Sprintf("%.1fMB/s", float64(p.written)/elapsed/1024/1024)))
		}
		p.logger.Info("download progress", fields...)
	}
	return len(b), nil
}
