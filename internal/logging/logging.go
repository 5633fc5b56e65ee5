// Package logging builds the slog loggers used by the flat commands. The level can be
// forced with the FLAT_LOG_LEVEL environment variable (DEBUG, INFO, WARN, ERROR).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel is the environment variable read by LevelFromEnv.
const EnvLevel = "FLAT_LOG_LEVEL"

// New returns a text logger writing to w at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ParseLevel maps a level name to its slog.Level. Unknown names report false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromEnv returns the level named by EnvLevel, or fallback when it is unset or
// not a level name.
func LevelFromEnv(fallback slog.Level) slog.Level {
	if level, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		return level
	}
	return fallback
}

// OpenFile opens path for appending and returns a logger writing to it. The terminal
// demo owns the screen, so its logs cannot go to stderr.
func OpenFile(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}
