// Package logging wires a structured slog.Logger for per-call diagnostics
// (job runs, provider calls), distinct from internal/audit's JSONL
// interaction trail, which is an append-only record rather than an
// operational log.
package logging

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the rotating log sink.
type Options struct {
	// Path is the log file path. Required.
	Path string
	// MaxSizeMB is the size in megabytes a log file reaches before it's
	// rotated. Zero uses lumberjack's own default (100MB).
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain. Zero keeps all.
	MaxBackups int
	// MaxAgeDays is the number of days to retain rotated files. Zero keeps
	// them indefinitely.
	MaxAgeDays int
	// Level sets the minimum emitted level. Defaults to slog.LevelInfo.
	Level slog.Leveler
}

// New returns a JSON-handler slog.Logger backed by a rotating lumberjack
// file writer.
func New(opts Options) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
