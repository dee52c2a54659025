// Package tools locates the external programs a run needs (ffmpeg, ffprobe
// and yt-dlp) once at startup. Nothing is ever installed.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// ErrToolNotFound is returned when a required program cannot be located.
var ErrToolNotFound = errors.New("required tool not found")

// Tool names as searched on PATH.
const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
	YtDlp   = "yt-dlp"
)

var installHints = map[string]string{
	FFmpeg:  "install ffmpeg (https://ffmpeg.org/download.html) or set tools.ffmpeg",
	FFprobe: "ffprobe ships with ffmpeg; install it or set tools.ffprobe",
	YtDlp:   "install yt-dlp (https://github.com/yt-dlp/yt-dlp#installation), set tools.yt_dlp, or use -backend native",
}

// Toolchain holds the absolute paths of the resolved programs. A field is
// empty when the program was not required.
type Toolchain struct {
	FFmpeg  string
	FFprobe string
	YtDlp   string
}

// Requirements says which programs a run needs.
type Requirements struct {
	FFmpeg  bool
	FFprobe bool
	YtDlp   bool
}

// Any reports whether at least one program is required.
func (r Requirements) Any() bool {
	return r.FFmpeg || r.FFprobe || r.YtDlp
}

// Paths are user-configured locations. Empty means search PATH.
type Paths struct {
	FFmpeg  string
	FFprobe string
	YtDlp   string
}

// Resolver looks programs up. The zero value is not usable; see NewResolver.
type Resolver struct {
	lookPath  func(file string) (string, error)
	findYtDlp func(ctx context.Context) (string, error)
	logger    *zap.Logger
}

// NewResolver creates a Resolver that searches PATH and, for yt-dlp, the
// go-ytdlp cache without downloading anything.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		lookPath:  exec.LookPath,
		findYtDlp: cachedYtDlp,
		logger:    logger,
	}
}

// Resolve locates every required program. All missing programs are reported
// in a single error wrapping ErrToolNotFound.
func Resolve(ctx context.Context, req Requirements, paths Paths, logger *zap.Logger) (*Toolchain, error) {
	return NewResolver(logger).Resolve(ctx, req, paths)
}

// Resolve locates every required program.
func (r *Resolver) Resolve(ctx context.Context, req Requirements, paths Paths) (*Toolchain, error) {
	tc := &Toolchain{}
	var errs []error

	if req.FFmpeg {
		path, err := r.locate(FFmpeg, paths.FFmpeg)
		tc.FFmpeg = path
		errs = append(errs, err)
	}

	if req.FFprobe {
		path, err := r.locate(FFprobe, paths.FFprobe)
		tc.FFprobe = path
		errs = append(errs, err)
	}

	if req.YtDlp {
		path, err := r.locate(YtDlp, paths.YtDlp)
		if err != nil && paths.YtDlp == "" && r.findYtDlp != nil {
			if cached, cacheErr := r.findYtDlp(ctx); cacheErr == nil && cached != "" {
				r.logger.Debug("using cached yt-dlp", zap.String("path", cached))
				path, err = cached, nil
			}
		}
		tc.YtDlp = path
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	r.logger.Debug("toolchain resolved",
		zap.String("ffmpeg", tc.FFmpeg),
		zap.String("ffprobe", tc.FFprobe),
		zap.String("yt-dlp", tc.YtDlp),
	)
	return tc, nil
}

// locate resolves one program from an explicit path or PATH.
func (r *Resolver) locate(name, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		// LookPath checks an explicit path for existence and the executable bit.
		path, err := r.lookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %s at %s: %v", ErrToolNotFound, name, explicit, err)
		}
		return path, nil
	}

	path, err := r.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not on PATH (%s)", ErrToolNotFound, name, installHints[name])
	}
	return path, nil
}

// cachedYtDlp asks go-ytdlp for a previously installed binary. Downloads are
// disabled so a missing binary stays missing.
func cachedYtDlp(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{DisableDownload: true})
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}
