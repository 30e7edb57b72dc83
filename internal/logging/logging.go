// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rickgao/settlement-data/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger writing to stdout and, when cfg.File.Path is set, to
// a size-rotated file. The returned closer releases the file.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if cfg.File.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxAge:     cfg.File.MaxAgeDays,
			MaxBackups: cfg.File.MaxBackups,
			Compress:   cfg.File.Compress,
		}
		out = io.MultiWriter(stdout, lj)
		closer = lj
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(h), closer, nil
}

// ParseLevel converts a config level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
