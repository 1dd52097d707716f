// Package logger holds the process-wide slog logger used by the arena and the
// smmctl command. It discards everything unless configured, or unless the
// SMM_LOG_ALLOC environment variable is set, in which case debug output goes to
// stderr.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// EnvLogAlloc turns on debug logging of allocator decisions when non-empty.
const EnvLogAlloc = "SMM_LOG_ALLOC"

// L is the global logger instance.
var L = defaultLogger()

func defaultLogger() *slog.Logger {
	if os.Getenv(EnvLogAlloc) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return Discard()
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	LogFile string     // If set, log to this file (appended) instead of Writer
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Use the JSON handler instead of text
}

// Init configures logging. Call from main() before any log calls. The returned
// close function releases the log file, if one was opened.
func Init(opts Options) (func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		L = Discard()
		return noop, nil
	}

	w := opts.Writer
	closeFn := noop
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return noop, err
		}
		w = f
		closeFn = f.Close
	}
	if w == nil {
		w = os.Stderr
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}

	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(w, hopts))
	}
	return closeFn, nil
}
