package extract

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytaudio/command"
	"ytaudio/models"
)

// Compile-time interface check.
var _ command.Command = (*Builder)(nil)

func TestBuilder_BuildArgs(t *testing.T) {
	b := NewBuilder("/usr/bin/ffmpeg", "/dl/talk.m4a", "/dl/talk_part04.m4a").SetWindow(6300, 900)

	expected := []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-y",
		"-ss", "01:45:00.000",
		"-i", "/dl/talk.m4a",
		"-t", "00:15:00.000",
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"/dl/talk_part04.m4a",
	}
	assert.Equal(t, expected, b.BuildArgs())
}

func TestBuilder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantErr string
	}{
		{"valid", NewBuilder("ffmpeg", "in.m4a", "out.m4a").SetWindow(0, 10), ""},
		{"no input", NewBuilder("ffmpeg", "", "out.m4a").SetWindow(0, 10), "input path cannot be empty"},
		{"no output", NewBuilder("ffmpeg", "in.m4a", "").SetWindow(0, 10), "output path cannot be empty"},
		{"same path", NewBuilder("ffmpeg", "in.m4a", "in.m4a").SetWindow(0, 10), "must differ"},
		{"negative start", NewBuilder("ffmpeg", "in.m4a", "out.m4a").SetWindow(-1, 10), "start cannot be negative"},
		{"zero length", NewBuilder("ffmpeg", "in.m4a", "out.m4a"), "length must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuilder_DryRun(t *testing.T) {
	line, err := NewBuilder("ffmpeg", "/dl/my talk.m4a", "/dl/my talk_part01.m4a").SetWindow(0, 2100).DryRun()
	require.NoError(t, err)

	assert.Contains(t, line, "'/dl/my talk.m4a'")
	assert.Contains(t, line, "-t 00:35:00.000")

	_, err = NewBuilder("ffmpeg", "", "out.m4a").DryRun()
	assert.Error(t, err)
}

func TestBuilder_Metadata(t *testing.T) {
	b := NewBuilder("ffmpeg", "in.m4a", "out.m4a")
	assert.Equal(t, command.TaskTypeExtract, b.GetTaskType())
	assert.Equal(t, "in.m4a", b.GetInputPath())
	assert.Equal(t, "out.m4a", b.GetOutputPath())
}

func TestBuilder_RunInvalid(t *testing.T) {
	err := NewBuilder("ffmpeg", "in.m4a", "out.m4a").Run(context.Background())
	assert.ErrorContains(t, err, "cannot run extraction")
}

func TestExtractor_Plan(t *testing.T) {
	outputs := []models.OutputFile{
		{Window: models.SegmentWindow{Index: 1, Start: 0, Length: 2100}, Path: "/dl/talk_part01.m4a"},
		{Window: models.SegmentWindow{Index: 2, Start: 2100, Length: 900}, Path: "/dl/talk_part02.m4a"},
	}

	lines, err := NewExtractor("/usr/bin/ffmpeg", nil).Plan("/dl/talk.m4a", outputs)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "-ss 00:35:00.000")
	assert.Contains(t, lines[1], "-t 00:15:00.000")
	assert.Contains(t, lines[1], "/dl/talk_part02.m4a")
}

func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestExtractor_Extract(t *testing.T) {
	// The output path is the last argument.
	ffmpeg := fakeFFmpeg(t, `for last; do :; done; echo part > "$last"`)
	dir := t.TempDir()
	out := filepath.Join(dir, "talk_part01.m4a")

	err := NewExtractor(ffmpeg, nil).Extract(context.Background(), filepath.Join(dir, "talk.m4a"), 0, 60, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestExtractor_ExtractFailureRemovesOutput(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done; echo partial > "$last"; echo "Conversion failed!" >&2; exit 1`)
	dir := t.TempDir()
	out := filepath.Join(dir, "talk_part03.m4a")

	err := NewExtractor(ffmpeg, nil).Extract(context.Background(), filepath.Join(dir, "talk.m4a"), 4200, 2100, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Conversion failed!")
	assert.NoFileExists(t, out)
}

func TestExtractor_RealFFmpeg(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not found on PATH")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "tone.m4a")
	gen := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error", "-f", "lavfi",
		"-i", "sine=frequency=440:duration=5", "-c:a", "aac", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test input: %v (%s)", err, out)
	}

	out := filepath.Join(dir, "tone_part02.m4a")
	require.NoError(t, NewExtractor(ffmpeg, nil).Extract(context.Background(), src, 3, 2, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
