package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		codec    string
		expected string
	}{
		{"libmp3lame", ".mp3"},
		{"aac", ".m4a"},
		{"libopus", ".opus"},
		{"flac", ".flac"},
		{"pcm_s16le", ".wav"},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			ext, err := ExtensionFor(tt.codec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ext)
			assert.True(t, IsSupportedCodec(tt.codec))
		})
	}

	_, err := ExtensionFor("h264")
	assert.ErrorContains(t, err, "unsupported audio codec")
	assert.False(t, IsSupportedCodec("h264"))
}

func TestOutputPathFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		codec    string
		expected string
	}{
		{"webm to mp3", "/dl/talk.webm", "libmp3lame", "/dl/talk.mp3"},
		{"mp4 to m4a", "/dl/talk.mp4", "aac", "/dl/talk.m4a"},
		{"same extension", "/dl/talk.m4a", "aac", "/dl/talk-reencoded.m4a"},
		{"same extension upper case", "/dl/talk.MP3", "libmp3lame", "/dl/talk-reencoded.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputPathFor(tt.input, tt.codec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTranscoder_Builder(t *testing.T) {
	tr := NewTranscoder("ffmpeg", Settings{Codec: "libopus", Bitrate: "96k", SampleRate: 48000, Channels: 2}, nil)

	b, err := tr.Builder("/dl/talk.webm", 600)
	require.NoError(t, err)
	assert.Equal(t, "/dl/talk.opus", b.GetOutputPath())
	assert.Contains(t, b.BuildArgs(), "96k")
	assert.Contains(t, b.BuildArgs(), "48000")

	_, err = NewTranscoder("ffmpeg", Settings{Codec: "nope"}, nil).Builder("/dl/talk.webm", 600)
	assert.Error(t, err)
}

func TestTranscoder_Transcode(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done; echo audio > "$last"; echo "progress=end" >&2`)
	dir := t.TempDir()
	src := filepath.Join(dir, "talk.webm")
	require.NoError(t, os.WriteFile(src, []byte("webm"), 0644))

	out, err := NewTranscoder(ffmpeg, Settings{Codec: "libmp3lame", Bitrate: "192k"}, nil).
		Transcode(context.Background(), src, 60)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "talk.mp3"), out)
	assert.FileExists(t, out)
	assert.NoFileExists(t, src, "source is removed unless KeepSource is set")
}

func TestTranscoder_TranscodeKeepSource(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done; echo audio > "$last"`)
	dir := t.TempDir()
	src := filepath.Join(dir, "talk.webm")
	require.NoError(t, os.WriteFile(src, []byte("webm"), 0644))

	_, err := NewTranscoder(ffmpeg, Settings{Codec: "aac", KeepSource: true}, nil).
		Transcode(context.Background(), src, 60)
	require.NoError(t, err)
	assert.FileExists(t, src)
}

func TestTranscoder_TranscodeFailureKeepsSource(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `exit 1`)
	dir := t.TempDir()
	src := filepath.Join(dir, "talk.webm")
	require.NoError(t, os.WriteFile(src, []byte("webm"), 0644))

	_, err := NewTranscoder(ffmpeg, Settings{Codec: "libmp3lame"}, nil).
		Transcode(context.Background(), src, 60)
	assert.Error(t, err)
	assert.FileExists(t, src)
}
