package logging

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for logging
// Implementations include file, console, and null loggers
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// handlerLogger adapts a slog handler to Logger
type handlerLogger struct {
	log    *slog.Logger
	closer io.Closer
}

func newHandlerLogger(h slog.Handler, closer io.Closer) *handlerLogger {
	return &handlerLogger{log: slog.New(h), closer: closer}
}

// Debug logs a debug message
func (l *handlerLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelDebug, msg, attrs(fields)...)
}

// Info logs an info message
func (l *handlerLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelInfo, msg, attrs(fields)...)
}

// Warn logs a warning message
func (l *handlerLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log.LogAttrs(ctx, slog.LevelWarn, msg, attrs(fields)...)
}

// Error logs an error message
func (l *handlerLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	a := attrs(fields)
	if err != nil {
		a = append([]slog.Attr{slog.String("error", err.Error())}, a...)
	}
	l.log.LogAttrs(ctx, slog.LevelError, msg, a...)
}

// WithFields returns a logger with additional fields.
// The derived logger shares the underlying output.
func (l *handlerLogger) WithFields(fields Fields) Logger {
	args := lo.Map(attrs(fields), func(a slog.Attr, _ int) any { return a })
	return &handlerLogger{log: l.log.With(args...), closer: l.closer}
}

// Close flushes and closes the logger
func (l *handlerLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// attrs converts fields to attributes in key order
func attrs(fields Fields) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}

	keys := lo.Keys(fields)
	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

// slogLevel maps a Level onto slog
func (l Level) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
