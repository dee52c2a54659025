package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ytaudio/models"
)

const (
	DefaultCodec      = "libmp3lame"
	DefaultBitrate    = "192k"
	DefaultSampleRate = 44100
	DefaultChannels   = 2
)

// codecExtensions maps supported encoders to the container they are written to.
var codecExtensions = map[string]string{
	"libmp3lame": ".mp3",
	"aac":        ".m4a",
	"libfdk_aac": ".m4a",
	"libopus":    ".opus",
	"libvorbis":  ".ogg",
	"flac":       ".flac",
	"pcm_s16le":  ".wav",
}

// Codecs returns the supported encoder names.
func Codecs() []string {
	return []string{"libmp3lame", "aac", "libfdk_aac", "libopus", "libvorbis", "flac", "pcm_s16le"}
}

// IsSupportedCodec reports whether codec has a known output container.
func IsSupportedCodec(codec string) bool {
	_, ok := codecExtensions[codec]
	return ok
}

// IsLossless reports whether codec ignores a target bitrate.
func IsLossless(codec string) bool {
	return codec == "flac" || codec == "pcm_s16le"
}

// ExtensionFor returns the file extension (with dot) for codec.
func ExtensionFor(codec string) (string, error) {
	ext, ok := codecExtensions[codec]
	if !ok {
		return "", fmt.Errorf("unsupported audio codec %q (supported: %s)", codec, strings.Join(Codecs(), ", "))
	}
	return ext, nil
}

// OutputPathFor returns inputPath with its extension replaced by the one for
// codec. When the extensions already match a "-reencoded" suffix is added so
// the source is never overwritten.
func OutputPathFor(inputPath, codec string) (string, error) {
	ext, err := ExtensionFor(codec)
	if err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if strings.EqualFold(filepath.Ext(inputPath), ext) {
		stem += "-reencoded"
	}
	return stem + ext, nil
}

// Settings are the encoder options applied by a Transcoder.
type Settings struct {
	Codec      string
	Bitrate    string
	SampleRate int
	Channels   int
	KeepSource bool
}

// Transcoder re-encodes whole files with the resolved ffmpeg binary.
type Transcoder struct {
	ffmpegPath string
	settings   Settings
	logger     *zap.Logger

	// logEvery throttles progress log lines
	logEvery time.Duration
}

// NewTranscoder creates a Transcoder.
func NewTranscoder(ffmpegPath string, settings Settings, logger *zap.Logger) *Transcoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcoder{
		ffmpegPath: ffmpegPath,
		settings:   settings,
		logger:     logger,
		logEvery:   5 * time.Second,
	}
}

// Builder returns the configured command for inputPath, for dry runs.
func (t *Transcoder) Builder(inputPath string, duration float64) (*AudioBuilder, error) {
	outputPath, err := OutputPathFor(inputPath, t.settings.Codec)
	if err != nil {
		return nil, err
	}

	b := NewAudioBuilder(t.ffmpegPath, inputPath, outputPath)
	b.SetCodec(t.settings.Codec).
		SetBitrate(t.settings.Bitrate).
		SetSampleRate(t.settings.SampleRate).
		SetChannels(t.settings.Channels).
		SetProgressCallback(duration, t.progressLogger(inputPath))
	return b, nil
}

// Transcode re-encodes inputPath and returns the path of the new file. The
// source is deleted after a successful run unless KeepSource is set.
func (t *Transcoder) Transcode(ctx context.Context, inputPath string, duration float64) (string, error) {
	b, err := t.Builder(inputPath, duration)
	if err != nil {
		return "", err
	}

	t.logger.Info("re-encoding audio",
		zap.String("input", inputPath),
		zap.String("output", b.GetOutputPath()),
		zap.String("codec", t.settings.Codec),
		zap.String("bitrate", t.settings.Bitrate),
	)

	if err := b.Run(ctx); err != nil {
		return "", err
	}

	if !t.settings.KeepSource {
		if err := os.Remove(inputPath); err != nil {
			t.logger.Warn("could not remove source after re-encode", zap.String("path", inputPath), zap.Error(err))
		}
	}

	return b.GetOutputPath(), nil
}

func (t *Transcoder) progressLogger(inputPath string) models.ProgressCallback {
	var last time.Time
	return func(p *models.TranscodeProgress) {
		switch p.State {
		case models.ProgressStateRunning:
			if time.Since(last) < t.logEvery {
				return
			}
			last = time.Now()
			t.logger.Info("re-encode progress", zap.String("input", inputPath), zap.String("progress", p.FormatSummary()))
		case models.ProgressStateCompleted:
			t.logger.Info("re-encode finished",
				zap.String("input", inputPath),
				zap.Duration("elapsed", p.UpdatedAt.Sub(p.StartTime).Round(time.Millisecond)),
			)
		case models.ProgressStateFailed:
			t.logger.Warn("re-encode failed", zap.String("input", inputPath), zap.Float64("percent", p.Percent))
		}
	}
}
