package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the log verbosity threshold.
type Level = zapcore.Level

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar       = build()
)

func build() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// ParseLevel converts a textual level to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal", "panic":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// SetLevel adjusts the global log level.
func SetLevel(l Level) {
	atomicLevel.SetLevel(l)
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	sugar.Debugf(format, args...)
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	sugar.Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	sugar.Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar.Sync()
}
