// Package logging configures the process-wide zerolog logger for
// Synapse. All packages log through the zerolog/log global; this
// package owns level parsing, console formatting and optional file
// output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls logger behavior.
type Config struct {
	// Level is the minimum level to log ("debug", "info", "warn", "error").
	Level string

	// File is an optional path for persistent logs. Console output is
	// always enabled; the file receives the same stream when set.
	File string

	// Pretty enables the human-readable console writer. When false,
	// raw JSON lines are emitted (useful when piping to a collector).
	Pretty bool
}

// Setup installs the global logger. It returns a closer for the log
// file (a no-op closer when no file is configured).
func Setup(cfg Config) (io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	closer := io.NopCloser(nil)
	writer := console
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return closer, nil
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// parseLevel maps a level string to a zerolog level. Empty defaults
// to info.
func parseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
