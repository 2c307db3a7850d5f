// Package logging sets up protodig's structured logger, following the
// teacher's log/slog-with-JSON-handler convention and adding optional
// file rotation for long batch runs.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/binaryforensics/protodig/internal/config"
)

// New builds the process-wide logger from cfg and the CLI's -v count
// (verbosity overrides the configured level when non-zero, matching the
// original tool's -v/-vv/-vvv verbosity ladder).
func New(cfg config.LoggingConfig, verbosity int) *slog.Logger {
	level := levelFromName(cfg.Level)
	if verbosity > 0 {
		level = levelFromVerbosity(verbosity)
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler)
}

func levelFromName(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// levelFromVerbosity maps -v repeat count to a slog level: 0 -> warn
// (the default, applied by the caller before incrementing), 1 -> info,
// 2 -> debug, 3+ -> debug (slog has no finer level than Debug).
func levelFromVerbosity(count int) slog.Level {
	switch {
	case count >= 2:
		return slog.LevelDebug
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
