package pubsub

import (
	"context"

	"go.uber.org/zap"
)

// zapLogger adapts a *zap.Logger to the Logger interface.
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger so it can be passed to WithLogger.
// A nil logger yields the noop logger.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return NewNoopLogger()
	}
	return &zapLogger{logger: logger}
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
