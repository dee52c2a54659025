package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytaudio/config"
	"ytaudio/download"
	"ytaudio/segmenter"
	"ytaudio/tools"
)

type fakeDownloader struct {
	dir   string
	name  string
	err   error
	calls []download.Request
}

func (f *fakeDownloader) Download(_ context.Context, req download.Request) (*download.Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(f.dir, f.name)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		return nil, err
	}
	return &download.Result{Path: path, Title: "Talk"}, nil
}

// fakeTools writes ffprobe and ffmpeg stand-ins. ffprobe reports duration
// seconds; ffmpeg writes its last argument.
func fakeTools(t *testing.T, duration string) *tools.Toolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	ffprobe := filepath.Join(dir, "ffprobe")
	ffmpeg := filepath.Join(dir, "ffmpeg")
	probeScript := "#!/bin/sh\necho '{\"format\":{\"duration\":\"" + duration + "\"},\"streams\":[]}'\n"
	mpegScript := "#!/bin/sh\nfor last; do :; done\necho part > \"$last\"\n"
	require.NoError(t, os.WriteFile(ffprobe, []byte(probeScript), 0755))
	require.NoError(t, os.WriteFile(ffmpeg, []byte(mpegScript), 0755))

	return &tools.Toolchain{FFmpeg: ffmpeg, FFprobe: ffprobe}
}

func urlConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.URL = "https://youtu.be/abc"
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestPipeline_DownloadOnly(t *testing.T) {
	cfg := urlConfig(t)
	cfg.AudioOnly = true
	fake := &fakeDownloader{dir: cfg.OutputDir, name: "Talk.mp4"}

	var out bytes.Buffer
	p := newPipeline(cfg, &tools.Toolchain{}, nil, &out)
	p.downloader = fake

	report, err := p.run(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, download.QualityBest, fake.calls[0].Quality)
	assert.True(t, fake.calls[0].AudioOnly)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "Talk.mp4"), report.FinalPath())
	assert.False(t, report.WasSplit())
	assert.Contains(t, out.String(), "Audio-only mode")

	out.Reset()
	p.printSummary(report)
	assert.Contains(t, out.String(), "Download complete! Audio saved to "+cfg.OutputDir)
}

func TestPipeline_DownloadError(t *testing.T) {
	cfg := urlConfig(t)
	p := newPipeline(cfg, &tools.Toolchain{}, nil, &bytes.Buffer{})
	p.downloader = &fakeDownloader{err: download.ErrNoFormat}

	_, err := p.run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, download.ErrNoFormat)
	assert.Contains(t, err.Error(), "download failed")
}

func TestPipeline_DownloadAndSplit(t *testing.T) {
	cfg := urlConfig(t)
	cfg.Split.Enabled = true
	cfg.Split.ChunkDuration = 100
	tc := fakeTools(t, "250.0")

	var out bytes.Buffer
	p := newPipeline(cfg, tc, nil, &out)
	p.downloader = &fakeDownloader{dir: cfg.OutputDir, name: "Talk.m4a"}

	report, err := p.run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Parts, 3)
	assert.Equal(t, 250.0, report.Duration)
	for i, name := range []string{"Talk_part01.m4a", "Talk_part02.m4a", "Talk_part03.m4a"} {
		assert.Equal(t, filepath.Join(cfg.OutputDir, name), report.Parts[i].Path)
		assert.FileExists(t, report.Parts[i].Path)
	}
	assert.Equal(t, 50.0, report.Parts[2].Window.Length)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "Talk.m4a"), "original is removed after a full split")
}

func TestPipeline_ShortFileNotSplit(t *testing.T) {
	cfg := urlConfig(t)
	cfg.Split.Enabled = true
	tc := fakeTools(t, "1800")

	p := newPipeline(cfg, tc, nil, &bytes.Buffer{})
	p.downloader = &fakeDownloader{dir: cfg.OutputDir, name: "Short.m4a"}

	report, err := p.run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Parts, 1)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "Short.m4a"), report.Parts[0].Path)
	assert.FileExists(t, report.Parts[0].Path)
}

func TestPipeline_SplitIgnoresSubMillisecondTail(t *testing.T) {
	cfg := urlConfig(t)
	cfg.Split.Enabled = true
	tc := fakeTools(t, "4200.0004")

	p := newPipeline(cfg, tc, nil, &bytes.Buffer{})
	p.downloader = &fakeDownloader{dir: cfg.OutputDir, name: "Talk.m4a"}

	report, err := p.run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Parts, 2)
	assert.InDelta(t, 2100.0004, report.Parts[1].Window.Length, 1e-9)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "Talk_part03.m4a"))
}

func TestPipeline_BadDuration(t *testing.T) {
	cfg := urlConfig(t)
	cfg.Split.Enabled = true
	tc := fakeTools(t, "0")

	p := newPipeline(cfg, tc, nil, &bytes.Buffer{})
	p.downloader = &fakeDownloader{dir: cfg.OutputDir, name: "Broken.m4a"}

	report, err := p.run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, segmenter.ErrInvalidDuration))
	assert.FileExists(t, report.Downloaded)
}

func TestPipeline_DryRunLocalInput(t *testing.T) {
	tc := fakeTools(t, "7200")
	input := filepath.Join(t.TempDir(), "lecture.m4a")
	require.NoError(t, os.WriteFile(input, []byte("media"), 0644))

	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Split.Enabled = true

	var out bytes.Buffer
	p := newPipeline(cfg, tc, nil, &out)
	require.NoError(t, p.dryRun(context.Background()))

	got := out.String()
	assert.Contains(t, got, "DRY RUN MODE")
	assert.Contains(t, got, "Split plan (4 part(s))")
	assert.Contains(t, got, "lecture_part04.m4a")
	assert.Contains(t, got, "-ss 01:45:00.000")
	assert.Contains(t, got, "No files were written")

	assert.FileExists(t, input)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "lecture_part01.m4a"))
}

func TestPipeline_DryRunNative(t *testing.T) {
	cfg := urlConfig(t)
	cfg.Backend = config.BackendNative

	var out bytes.Buffer
	p := newPipeline(cfg, &tools.Toolchain{}, nil, &out)
	require.NoError(t, p.dryRun(context.Background()))

	assert.Contains(t, out.String(), "native video download of https://youtu.be/abc")
	assert.Contains(t, out.String(), "Nothing was downloaded")
}

func TestRun_Version(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-version"}))
}

func TestRun_ConfigError(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-backend", "curl", "https://youtu.be/abc"}))
}

func TestRun_SaveConfig(t *testing.T) {
	savePath := filepath.Join(t.TempDir(), "ytaudio.yaml")

	require.Equal(t, 0, run([]string{"-a", "-q", "480p", "-save-config", savePath}))

	saved, err := config.LoadConfigFile(savePath)
	require.NoError(t, err)
	assert.True(t, saved.AudioOnly)
	assert.Equal(t, "480p", saved.Quality)
	assert.Empty(t, saved.URL)
}

func TestRun_Help(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}
