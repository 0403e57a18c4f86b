package main

import (
	"io"
	"log/slog"
	"os"
)

// debugEnv enables debug logging like --debug.
const debugEnv = "CHERRI_DEBUG"

// newLogger creates the CLI logger: text on w without time or level, at
// debug level when requested by flag or environment.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug || os.Getenv(debugEnv) != "" {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			// Simplify level display
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
