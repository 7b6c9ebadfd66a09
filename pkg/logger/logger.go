package logger

import (
	"io"
	"log/slog"
	"os"
)

// Interface defines logging methods used by the checkers
type Interface interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Logger implements the logging interface
type Logger struct {
	logger *slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel creates a new logger with specified level
func NewWithLevel(level slog.Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing text records to w
func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
	}
}

// LevelFromFlags maps the CLI verbosity flags to a log level
func LevelFromFlags(verbose, debug bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// ForWorker returns a logger tagged with the worker index
func (l *Logger) ForWorker(i int) *Logger {
	return &Logger{logger: l.logger.With("worker", i)}
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// GetSlogLogger returns the underlying slog logger
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}

// Error creates a structured error field
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// File creates a structured file field
func File(path string) slog.Attr {
	return slog.String("file", path)
}
