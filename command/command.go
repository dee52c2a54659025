// Package command provides the Command interface shared by the ffmpeg
// builders and helpers to run and render their invocations.
//
// Builders (extract, audio) only assemble arguments; the binary path comes
// from the resolved toolchain so no builder looks up ffmpeg on its own.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
)

// TaskType represents the kind of ffmpeg invocation.
type TaskType string

const (
	TaskTypeExtract TaskType = "extract" // Stream-copy of one time window
	TaskTypeAudio   TaskType = "audio"   // Audio re-encode
)

// maxOutputInError bounds how much ffmpeg output is copied into an error.
const maxOutputInError = 2048

// Command represents an ffmpeg command that can be built, executed, or previewed.
//
// Example usage:
//
//	cmd := extract.NewBuilder("/usr/bin/ffmpeg", "talk.m4a", "talk_part01.m4a").
//		SetWindow(0, 2100)
//
//	line, _ := cmd.DryRun()
//	err := cmd.Run(ctx)
type Command interface {
	// BuildArgs constructs the ffmpeg arguments, without the binary.
	BuildArgs() []string

	// Run executes the command and blocks until it exits. A non-zero exit
	// status is returned as an error carrying ffmpeg's output.
	Run(ctx context.Context) error

	// DryRun returns the shell-quoted command line without executing it.
	DryRun() (string, error)

	// GetTaskType returns the kind of invocation, for logging.
	GetTaskType() TaskType

	// GetInputPath returns the primary input file path.
	GetInputPath() string

	// GetOutputPath returns the output file path.
	GetOutputPath() string
}

// Render returns binary and args as a single shell-safe command line.
func Render(binary string, args []string) string {
	return shellescape.QuoteCommand(append([]string{binary}, args...))
}

// Exec runs binary with args and returns an error including the trimmed
// combined output when the process fails to start or exits non-zero.
func Exec(ctx context.Context, binary string, args []string) error {
	if binary == "" {
		return fmt.Errorf("no executable configured")
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%s interrupted: %w", binary, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with status %d: %s", binary, exitErr.ExitCode(), TrimOutput(string(output)))
	}
	return fmt.Errorf("failed to run %s: %w", binary, err)
}

// TrimOutput keeps the tail of a tool's output, where ffmpeg prints the
// actual error.
func TrimOutput(output string) string {
	output = strings.TrimSpace(output)
	if len(output) <= maxOutputInError {
		return output
	}
	return "..." + output[len(output)-maxOutputInError:]
}
