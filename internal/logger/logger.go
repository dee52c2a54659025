// Package logger builds the zap logger used across the program.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing coloured output to stderr. verbose
// forces debug level regardless of level.
func New(level string, verbose bool) (*zap.Logger, error) {
	return NewWithWriter(colorable.NewColorableStderr(), level, verbose, true)
}

// NewWithWriter is New with an explicit sink. color selects coloured level names.
func NewWithWriter(w io.Writer, level string, verbose, color bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if !verbose {
		encCfg.CallerKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)

	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if verbose {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}

// ParseLevel converts a level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	if level == "warning" {
		level = "warn"
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
	}
	return lvl, nil
}

// WithRunID tags every entry of logger with a fresh run identifier.
func WithRunID(logger *zap.Logger) (*zap.Logger, string) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	runID := id.String()
	return logger.With(zap.String("run_id", runID)), runID
}
