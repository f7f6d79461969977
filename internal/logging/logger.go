package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a structured logger shared by handlers and services.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a human-readable text logger in development and a JSON
// logger otherwise, both writing to stdout.
func NewLogger(isDevelopment bool) *Logger {
	return NewLoggerWithWriter(os.Stdout, isDevelopment)
}

// NewLoggerWithWriter is NewLogger with an explicit destination.
func NewLoggerWithWriter(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithFields returns a child logger that always includes the given fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}
