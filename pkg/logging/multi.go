package logging

import (
	"context"
	"errors"
)

// MultiLogger fans every call out to several loggers
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers. Nil entries are skipped.
func NewMultiLogger(loggers ...Logger) Logger {
	var active []Logger
	for _, l := range loggers {
		if l != nil {
			active = append(active, l)
		}
	}

	switch len(active) {
	case 0:
		return NewNullLogger()
	case 1:
		return active[0]
	}
	return &MultiLogger{loggers: active}
}

// Debug logs a debug message
func (m *MultiLogger) Debug(ctx context.Context, msg string, fields Fields) {
	for _, l := range m.loggers {
		l.Debug(ctx, msg, fields)
	}
}

// Info logs an info message
func (m *MultiLogger) Info(ctx context.Context, msg string, fields Fields) {
	for _, l := range m.loggers {
		l.Info(ctx, msg, fields)
	}
}

// Warn logs a warning message
func (m *MultiLogger) Warn(ctx context.Context, msg string, fields Fields) {
	for _, l := range m.loggers {
		l.Warn(ctx, msg, fields)
	}
}

// Error logs an error message
func (m *MultiLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, l := range m.loggers {
		l.Error(ctx, msg, err, fields)
	}
}

// WithFields returns a logger with additional fields on every output
func (m *MultiLogger) WithFields(fields Fields) Logger {
	derived := make([]Logger, len(m.loggers))
	for i, l := range m.loggers {
		derived[i] = l.WithFields(fields)
	}
	return &MultiLogger{loggers: derived}
}

// Close closes every logger
func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
