// Package logging sets up structured run logging with an extra
// LevelTrace level one step above Info, mirroring the custom slog.Level
// pattern the rest of the corpus uses for tracing.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// LevelTrace sits numerically one step above slog's Info (between Info
// and Warn), for per-bit-group progress messages. A handler set to
// LevelTrace therefore drops Info messages.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Setup installs a text handler at the given level as the default
// slog logger and returns it. verbose selects LevelTrace; otherwise
// the supplied level is used as-is.
func Setup(level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = LevelTrace
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// Trace logs at LevelTrace using the default logger.
func Trace(ctx context.Context, msg string, args ...any) {
	slog.Log(ctx, LevelTrace, msg, args...)
}
