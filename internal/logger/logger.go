// Package logger builds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a JSON *slog.Logger writing to w with a "service" attribute on every record.
func New(w io.Writer, level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
