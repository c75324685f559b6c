// Package shlog provides the process-wide debug logger shared by the
// lexer, parser, and executor. Verbose tracing is gated behind the
// POSIXSH_DEBUG environment variable, mirroring how the teacher corpus
// gates its lexer tracing behind DEVCMD_DEBUG_LEXER: silent by default,
// chatty on demand, never on the hot path when disabled.
package shlog

import (
	"log/slog"
	"os"
)

var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("POSIXSH_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler)
}

// Get returns the shared logger. Components should tag their records
// with a "component" attribute via Get().With("component", "lexer").
func Get() *slog.Logger {
	return logger
}
