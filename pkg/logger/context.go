package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const (
	checkIDKey  contextKey = "check_id"
	strategyKey contextKey = "strategy"
	loggerKey   contextKey = "logger"
)

// WithCheckID tags the context with the id of the running stock check.
func WithCheckID(ctx context.Context, checkID string) context.Context {
	return context.WithValue(ctx, checkIDKey, checkID)
}

// CheckIDFrom returns the check id stored in ctx, if any.
func CheckIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(checkIDKey).(string)
	return id
}

// WithStrategy tags the context with the recovery strategy being attempted.
func WithStrategy(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, strategyKey, name)
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or base (the global logger if
// base is nil), decorated with the check id and strategy carried by ctx.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		base = l
	}
	if base == nil {
		base = Logger
	}

	var fields []zap.Field
	if id, ok := ctx.Value(checkIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("check_id", id))
	}
	if s, ok := ctx.Value(strategyKey).(string); ok && s != "" {
		fields = append(fields, StrategyField(s))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ErrorField returns a zap field for errors
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// DurationField returns the elapsed time in milliseconds.
func DurationField(d time.Duration) zap.Field {
	return zap.Int64("duration_ms", d.Milliseconds())
}

// CountField returns a zap field for an item count.
func CountField(count int) zap.Field {
	return zap.Int("item_count", count)
}

// StrategyField names a login or recovery strategy.
func StrategyField(name string) zap.Field {
	return zap.String("strategy", name)
}
