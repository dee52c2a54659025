// Package audio builds and runs ffmpeg commands that re-encode the audio of a
// downloaded file.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"ytaudio/command"
	"ytaudio/ffmpeg"
	"ytaudio/models"
)

// AudioBuilder implements AudioCommand for an audio-only re-encode.
type AudioBuilder struct {
	ffmpegPath       string
	inputPath        string
	outputPath       string
	codec            string
	bitrate          string
	sampleRate       int
	channels         int
	duration         float64
	progressCallback models.ProgressCallback
}

// NewAudioBuilder creates a new AudioBuilder for the given input and output paths.
func NewAudioBuilder(ffmpegPath, inputPath, outputPath string) *AudioBuilder {
	return &AudioBuilder{
		ffmpegPath: ffmpegPath,
		inputPath:  inputPath,
		outputPath: outputPath,
		codec:      DefaultCodec,
		bitrate:    DefaultBitrate,
	}
}

// SetCodec sets the audio codec (e.g., "libmp3lame", "aac", "libopus").
func (a *AudioBuilder) SetCodec(codec string) AudioCommand {
	a.codec = codec
	return a
}

// SetBitrate sets the audio bitrate (e.g., "128k", "192k").
func (a *AudioBuilder) SetBitrate(bitrate string) AudioCommand {
	a.bitrate = bitrate
	return a
}

// SetSampleRate sets the audio sample rate in Hz (e.g., 48000, 44100).
func (a *AudioBuilder) SetSampleRate(rate int) AudioCommand {
	a.sampleRate = rate
	return a
}

// SetChannels sets the number of audio channels (e.g., 1 for mono, 2 for stereo).
func (a *AudioBuilder) SetChannels(channels int) AudioCommand {
	a.channels = channels
	return a
}

// SetProgressCallback enables progress reporting. duration is the length of
// the input in seconds and is used to compute percentages.
func (a *AudioBuilder) SetProgressCallback(duration float64, callback models.ProgressCallback) AudioCommand {
	a.duration = duration
	a.progressCallback = callback
	return a
}

// BuildArgs constructs the ffmpeg command arguments.
func (a *AudioBuilder) BuildArgs() []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", a.inputPath,
		"-vn",          // No video
		"-map", "0:a:0", // First audio stream only
		"-c:a", a.codec,
	}

	// Lossless codecs reject a bitrate
	if a.bitrate != "" && !IsLossless(a.codec) {
		args = append(args, "-b:a", a.bitrate)
	}

	if a.sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(a.sampleRate))
	}

	if a.channels > 0 {
		args = append(args, "-ac", strconv.Itoa(a.channels))
	}

	if a.progressCallback != nil {
		args = append(args, "-progress", "pipe:2", "-nostats", "-loglevel", "error")
	} else {
		args = append(args, "-loglevel", "error")
	}

	return append(args, a.outputPath)
}

// Validate checks the builder has everything needed to run.
func (a *AudioBuilder) Validate() error {
	if a.inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}
	if a.outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if a.inputPath == a.outputPath {
		return fmt.Errorf("output path must differ from input path")
	}
	if a.codec == "" {
		return fmt.Errorf("codec cannot be empty")
	}
	return nil
}

// Run executes the ffmpeg command. A failed run removes the partial output.
func (a *AudioBuilder) Run(ctx context.Context) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("cannot run re-encode: %w", err)
	}

	var err error
	if a.progressCallback == nil {
		err = command.Exec(ctx, a.ffmpegPath, a.BuildArgs())
	} else {
		err = a.runWithProgress(ctx)
	}

	if err != nil {
		os.Remove(a.outputPath)
	}
	return err
}

// runWithProgress executes ffmpeg and streams progress updates via callback
func (a *AudioBuilder) runWithProgress(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, a.ffmpegPath, a.BuildArgs()...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	progress := models.NewTranscodeProgress(a.duration)
	a.progressCallback(progress)

	parser := ffmpeg.NewProgressParser()
	parseErr := parser.StreamProgress(stderr, progress, a.progressCallback)

	if cmdErr := cmd.Wait(); cmdErr != nil {
		progress.State = models.ProgressStateFailed
		a.progressCallback(progress)
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg re-encode failed: %w: %s", cmdErr, command.TrimOutput(parser.Tail()))
	}

	if parseErr != nil {
		return parseErr
	}

	progress.State = models.ProgressStateCompleted
	progress.SetOutTime(a.duration)
	a.progressCallback(progress)
	return nil
}

// DryRun returns the ffmpeg command without executing it.
func (a *AudioBuilder) DryRun() (string, error) {
	if err := a.Validate(); err != nil {
		return "", fmt.Errorf("cannot build re-encode: %w", err)
	}
	return command.Render(a.ffmpegPath, a.BuildArgs()), nil
}

// GetTaskType returns the task type (audio).
func (a *AudioBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeAudio
}

// GetInputPath returns the input file path.
func (a *AudioBuilder) GetInputPath() string {
	return a.inputPath
}

// GetOutputPath returns the output file path.
func (a *AudioBuilder) GetOutputPath() string {
	return a.outputPath
}
