// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() to configure default logger with level, format, and file output from environment.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init configures the default slog logger based on environment variables.
// LOG_LEVEL: debug, info, warn, error (default: info)
// LOG_FORMAT: text, json (default: text)
// LOG_DIR: when set, logs are duplicated into LOG_DIR/gallery-bff.log so the
// admin log browser has something to serve.
func Init() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))

	opts := &slog.HandlerOptions{
		Level: level,
	}

	out := io.Writer(os.Stdout)
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		if file := openLogFile(dir); file != nil {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// openLogFile creates the log directory if needed and opens the service log
// for appending. Failure falls back to stdout-only logging.
func openLogFile(dir string) *os.File {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Failed to create log directory, logging to stdout only", "dir", dir, "error", err)
		return nil
	}
	file, err := os.OpenFile(filepath.Join(dir, "gallery-bff.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("Failed to open log file, logging to stdout only", "dir", dir, "error", err)
		return nil
	}
	return file
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
