package logger

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lvl, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lvl)
		})
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn", false, false)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_VerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "error", true, false)
	require.NoError(t, err)

	log.Debug("details")
	assert.Contains(t, buf.String(), "details")
}

func TestNewWithWriter_InvalidLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "chatty", false, false)
	assert.Error(t, err)
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info", false, false)
	require.NoError(t, err)

	tagged, runID := WithRunID(log)
	_, err = uuid.Parse(runID)
	require.NoError(t, err)

	tagged.Info("hello")
	assert.Contains(t, buf.String(), runID)
}
