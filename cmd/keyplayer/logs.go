package main

import (
	"io"
	"log/slog"
)

// NewLogger creates the server logger. Debug mode adds source locations.
func NewLogger(writer io.Writer, level slog.Level, debug bool) *slog.Logger {
	if debug {
		level = slog.LevelDebug
	}
	opts := slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}
	logger := slog.New(slog.NewTextHandler(writer, &opts))
	slog.SetDefault(logger)
	return logger
}
