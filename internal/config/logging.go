package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger for the configured level. MCP
// stdio processes must keep stdout clean for the protocol, so logs
// always go to stderr.
func NewLogger(level string) *slog.Logger {
	return newLogger(os.Stderr, level)
}

// NewLoggerTo is NewLogger with an explicit sink, used in tests.
func NewLoggerTo(w io.Writer, level string) *slog.Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
