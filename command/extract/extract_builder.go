// Package extract builds ffmpeg commands that copy one time window of a media
// file into a new file without re-encoding.
package extract

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"ytaudio/command"
	"ytaudio/internal/timeutil"
	"ytaudio/models"
)

// Builder implements command.Command for a single stream-copy extraction.
type Builder struct {
	ffmpegPath string
	inputPath  string
	outputPath string
	start      float64
	length     float64
}

// NewBuilder creates a Builder that reads inputPath and writes outputPath using
// the ffmpeg executable at ffmpegPath.
func NewBuilder(ffmpegPath, inputPath, outputPath string) *Builder {
	return &Builder{
		ffmpegPath: ffmpegPath,
		inputPath:  inputPath,
		outputPath: outputPath,
	}
}

// SetWindow sets the range [start, start+length) to copy, in seconds.
func (b *Builder) SetWindow(start, length float64) *Builder {
	b.start = start
	b.length = length
	return b
}

// Validate checks the builder has everything needed to run.
func (b *Builder) Validate() error {
	if b.inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}
	if b.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if b.inputPath == b.outputPath {
		return fmt.Errorf("output path must differ from input path")
	}
	if b.start < 0 {
		return fmt.Errorf("start cannot be negative")
	}
	if b.length <= 0 {
		return fmt.Errorf("length must be positive")
	}
	return nil
}

// BuildArgs constructs the ffmpeg arguments.
//
// -ss before -i seeks on the input, which is fast for stream copy. -t bounds
// the output length so consecutive windows do not overlap. -map 0 keeps every
// stream and -c copy avoids re-encoding.
func (b *Builder) BuildArgs() []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-y",
		"-ss", timeutil.FormatSeconds(b.start),
		"-i", b.inputPath,
		"-t", timeutil.FormatSeconds(b.length),
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		b.outputPath,
	}
}

// Run executes the extraction.
func (b *Builder) Run(ctx context.Context) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("cannot run extraction: %w", err)
	}
	return command.Exec(ctx, b.ffmpegPath, b.BuildArgs())
}

// DryRun returns the command line without executing it.
func (b *Builder) DryRun() (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("cannot build extraction: %w", err)
	}
	return command.Render(b.ffmpegPath, b.BuildArgs()), nil
}

// GetTaskType returns the task type (extract).
func (b *Builder) GetTaskType() command.TaskType {
	return command.TaskTypeExtract
}

// GetInputPath returns the input file path.
func (b *Builder) GetInputPath() string {
	return b.inputPath
}

// GetOutputPath returns the output file path.
func (b *Builder) GetOutputPath() string {
	return b.outputPath
}

// Extractor runs one Builder per call and satisfies segmenter.Extractor.
type Extractor struct {
	ffmpegPath string
	logger     *zap.Logger
}

// NewExtractor creates an Extractor for the ffmpeg executable at ffmpegPath.
func NewExtractor(ffmpegPath string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{ffmpegPath: ffmpegPath, logger: logger}
}

// Extract copies [start, start+length) of inputPath into outputPath.
//
// A failed run leaves no output behind: whatever ffmpeg wrote is removed.
func (e *Extractor) Extract(ctx context.Context, inputPath string, start, length float64, outputPath string) error {
	b := NewBuilder(e.ffmpegPath, inputPath, outputPath).SetWindow(start, length)

	if line, err := b.DryRun(); err == nil {
		e.logger.Debug("running ffmpeg", zap.String("cmd", line))
	}

	if err := b.Run(ctx); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("could not remove failed output", zap.String("path", outputPath), zap.Error(rmErr))
		}
		return err
	}
	return nil
}

// Plan renders the command lines Extract would run for each output, for
// dry-run output.
func (e *Extractor) Plan(inputPath string, outputs []models.OutputFile) ([]string, error) {
	lines := make([]string, 0, len(outputs))
	for _, out := range outputs {
		line, err := NewBuilder(e.ffmpegPath, inputPath, out.Path).
			SetWindow(out.Window.Start, out.Window.Length).
			DryRun()
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", out.Window.Index, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
