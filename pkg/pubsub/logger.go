package pubsub

import (
	"context"
	"time"
)

// Logger defines the interface for structured logging. It keeps the
// publisher decoupled from any particular logging library; adapters for
// zap and others satisfy it trivially.
type Logger interface {
	// Debug logs a debug message with optional fields.
	Debug(ctx context.Context, msg string, fields ...Field)
	// Info logs an info message with optional fields.
	Info(ctx context.Context, msg string, fields ...Field)
	// Warn logs a warning message with optional fields.
	Warn(ctx context.Context, msg string, fields ...Field)
	// Error logs an error message with optional fields.
	Error(ctx context.Context, msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// noopLogger is a logger that does nothing.
// Used as default when no logger is provided.
type noopLogger struct{}

func (n *noopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (n *noopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (n *noopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (n *noopLogger) Error(ctx context.Context, msg string, fields ...Field) {}

// NewNoopLogger returns a logger that does nothing.
func NewNoopLogger() Logger {
	return &noopLogger{}
}
