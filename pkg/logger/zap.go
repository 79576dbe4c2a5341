package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLogPath is used by the production logger when no path is configured.
const DefaultLogPath = "./logs/deckwatch.log"

// callerWidth pads the caller column so messages line up on the console.
const callerWidth = 24

// Logger is the process logger. It is a no-op until InitLogger runs.
var Logger = zap.NewNop()

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// InitLogger installs the process logger. Development logs go to the console
// only; production logs are JSON in a rotated file, teed to stdout. Secret
// fields are masked in both.
func InitLogger(isDevelopment bool, logPath string, logLevel ...string) error {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if len(logLevel) > 0 && logLevel[0] != "" {
		level.SetLevel(ParseLevel(logLevel[0]))
	}

	enc := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), level),
	}
	if !isDevelopment {
		file, err := rotatingFile(logPath)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), file, level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if isDevelopment {
		opts = append(opts, zap.Development())
	}
	l := zap.New(Redact(zapcore.NewTee(cores...)), opts...)

	Logger = l
	zap.ReplaceGlobals(l)
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-5s", l.CapitalString()))
	}
	cfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(shortCaller(c))
	}
	return cfg
}

func rotatingFile(path string) (zapcore.WriteSyncer, error) {
	if path == "" {
		path = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}), nil
}

// shortCaller renders package/file.go:line, left-aligned and clipped to
// callerWidth.
func shortCaller(c zapcore.EntryCaller) string {
	path := c.TrimmedPath()
	for _, prefix := range []string{"pkg/", "cmd/", "internal/"} {
		path = strings.TrimPrefix(path, prefix)
	}
	if len(path) > callerWidth {
		path = "..." + path[len(path)-(callerWidth-3):]
	}
	return fmt.Sprintf("%-*s", callerWidth, path)
}

// Named returns a child of the process logger for a component.
func Named(name string) *zap.Logger {
	return Logger.Named(name)
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Logger.Sync()
}
