// Package segmenter splits a media file into fixed-length, sequentially named
// parts by asking an Extractor to stream-copy one window at a time.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"ytaudio/models"
)

// Segmenter splits one media file into parts of at most chunkLength seconds.
//
// Windows are extracted sequentially. The first failure stops the run; the
// original file is only removed after every window has been written.
type Segmenter struct {
	extractor      Extractor
	chunkLength    float64
	outputDir      string
	cleanupPartial bool
	logger         *zap.Logger

	// remove deletes a file; replaced in tests
	remove func(name string) error
}

// NewSegmenter creates a Segmenter with the default chunk length.
func NewSegmenter(extractor Extractor, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{
		extractor:   extractor,
		chunkLength: DefaultChunkLength,
		logger:      logger,
		remove:      os.Remove,
	}
}

// SetChunkLength sets the maximum length of a part in seconds.
func (s *Segmenter) SetChunkLength(seconds float64) *Segmenter {
	s.chunkLength = seconds
	return s
}

// SetOutputDir sets the directory for the parts. Empty means next to the input.
func (s *Segmenter) SetOutputDir(dir string) *Segmenter {
	s.outputDir = dir
	return s
}

// SetCleanupPartial controls whether parts written before a failure are removed.
func (s *Segmenter) SetCleanupPartial(cleanup bool) *Segmenter {
	s.cleanupPartial = cleanup
	return s
}

// ChunkLength returns the configured chunk length in seconds.
func (s *Segmenter) ChunkLength() float64 {
	return s.chunkLength
}

// Plan returns the windows and output paths Segment would produce, without
// touching the filesystem.
func (s *Segmenter) Plan(inputPath string, total float64) ([]models.OutputFile, error) {
	windows, err := PlanWindows(total, s.chunkLength)
	if err != nil {
		return nil, err
	}
	if err := ValidateWindows(windows, total); err != nil {
		return nil, fmt.Errorf("inconsistent plan for %s: %w", inputPath, err)
	}

	if len(windows) == 1 {
		return []models.OutputFile{{Window: windows[0], Path: inputPath}}, nil
	}

	outputs := make([]models.OutputFile, len(windows))
	for i, w := range windows {
		outputs[i] = models.OutputFile{
			Window: w,
			Path:   models.PartName(inputPath, s.outputDir, w.Index),
		}
	}
	return outputs, nil
}

// Segment splits inputPath, whose duration is total seconds, into parts.
//
// If total <= chunk length the input is returned unchanged as the single
// output and the extractor is never called. Otherwise each window is
// extracted in order and the original file is deleted once all succeed.
//
// On failure the returned slice lists the parts left on disk together with
// the error. An extraction failure wraps ErrExtractionFailed; the original is
// kept and, unless cleanup of partial output is enabled, so are earlier parts.
func (s *Segmenter) Segment(ctx context.Context, inputPath string, total float64) ([]models.OutputFile, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("segmenter has no extractor")
	}

	plan, err := s.Plan(inputPath, total)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("input", inputPath), zap.Float64("duration", total))

	if len(plan) == 1 {
		log.Info("no split needed", zap.Float64("chunk_length", s.chunkLength))
		return plan, nil
	}

	if _, err := os.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("%w: input %s: %w", ErrFilesystem, inputPath, err)
	}

	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create output dir %s: %w", ErrFilesystem, s.outputDir, err)
		}
	}

	log.Info("splitting", zap.Int("parts", len(plan)), zap.Float64("chunk_length", s.chunkLength))

	written := make([]models.OutputFile, 0, len(plan))
	for _, out := range plan {
		w := out.Window
		log.Debug("extracting window",
			zap.Int("index", w.Index),
			zap.Float64("start", w.Start),
			zap.Float64("length", w.Length),
			zap.String("output", out.Path),
		)

		if err := s.extractor.Extract(ctx, inputPath, w.Start, w.Length, out.Path); err != nil {
			log.Error("window extraction failed",
				zap.Int("index", w.Index),
				zap.Int("parts", len(plan)),
				zap.Error(err),
			)
			extractErr := fmt.Errorf("%w: part %d of %d (%s): %w", ErrExtractionFailed, w.Index, len(plan), out.Path, err)

			if s.cleanupPartial {
				// The failed part may have been partially written.
				leftovers := s.removeAll(append(written, out))
				return leftovers, extractErr
			}
			return written, extractErr
		}

		written = append(written, out)
	}

	if err := s.remove(inputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return written, fmt.Errorf("%w: delete original %s: %w", ErrFilesystem, inputPath, err)
	}

	log.Info("split complete", zap.Int("parts", len(written)))
	return written, nil
}

// SegmentProbed asks probe for the duration of inputPath and then segments it.
// A probe failure is reported as ErrInvalidDuration.
func (s *Segmenter) SegmentProbed(ctx context.Context, probe DurationProbe, inputPath string) ([]models.OutputFile, float64, error) {
	total, err := ProbeDuration(ctx, probe, inputPath)
	if err != nil {
		return nil, 0, err
	}

	outputs, err := s.Segment(ctx, inputPath, total)
	return outputs, total, err
}

// ProbeDuration returns the duration of inputPath in seconds. Probe errors
// and unusable values wrap ErrInvalidDuration.
func ProbeDuration(ctx context.Context, probe DurationProbe, inputPath string) (float64, error) {
	total, err := probe.Duration(ctx, inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidDuration, inputPath, err)
	}
	if err := validateDuration(total); err != nil {
		return 0, fmt.Errorf("%s: %w", inputPath, err)
	}
	return total, nil
}

// removeAll deletes the given parts and returns the ones that could not be
// removed (and therefore remain on disk).
func (s *Segmenter) removeAll(parts []models.OutputFile) []models.OutputFile {
	var remaining []models.OutputFile
	for _, part := range parts {
		if err := s.remove(part.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not remove partial output", zap.String("path", part.Path), zap.Error(err))
			remaining = append(remaining, part)
		}
	}
	return remaining
}
