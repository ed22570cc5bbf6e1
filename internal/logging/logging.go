// Package logging builds the zap loggers used by the CLI and the TUI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"daiw-cli/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Mode int

const (
	// ModeCLI logs to stderr.
	ModeCLI Mode = iota
	// ModeTUI logs to the configured file, or nowhere; stderr belongs to the screen.
	ModeTUI
)

// New returns a production JSON logger for cfg. verbose forces debug level.
func New(cfg config.LoggingConfig, mode Mode, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	out := []string{"stderr"}
	if mode == ModeTUI {
		if strings.TrimSpace(cfg.File) == "" {
			return zap.NewNop(), nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out = []string{cfg.File}
	} else if strings.TrimSpace(cfg.File) != "" {
		out = append(out, cfg.File)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = out
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
