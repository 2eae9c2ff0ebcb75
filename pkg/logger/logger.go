package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log is the global logger instance
var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// Setup initializes the global logger based on the environment.
// Production logs JSON, development logs text at debug level, anything else logs text at info.
func Setup(env string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch env {
	case "production":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "development":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Log = slog.New(handler).With(slog.String("service", "assurance-ledger"))
	slog.SetDefault(Log)
}

// Component returns a child logger tagged with a component name
func Component(name string) *slog.Logger {
	return Log.With(slog.String("component", name))
}

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
