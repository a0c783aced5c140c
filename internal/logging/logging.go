package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// BuildLogger creates a structured logger writing to stderr at the given
// level. Format "json" selects the JSON handler; anything else is text.
func BuildLogger(level, format string) *slog.Logger {
	return New(os.Stderr, level, format)
}

// New is BuildLogger with an explicit destination.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
