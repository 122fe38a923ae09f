// Package log carries a zap logger through contexts.
//
// Binaries call Structured or Development once at startup, code retrieves its
// logger with Logger(ctx), falling back to the process wide one.
package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

var (
	mu     sync.RWMutex
	global = zap.Must(developmentConfig(zapcore.InfoLevel).Build())
)

func developmentConfig(level zapcore.Level) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// Structured switches the process wide logger to json output. The level is
// read from the LOGLEVEL environment variable and defaults to info.
func Structured() {
	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if env := os.Getenv("LOGLEVEL"); env != "" {
		if err := level.Set(env); err != nil {
			level = zapcore.InfoLevel
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	SetLogger(zap.Must(cfg.Build()))
}

// Development switches the process wide logger to human readable console
// output at debug level.
func Development() {
	SetLogger(zap.Must(developmentConfig(zapcore.DebugLevel).Build()))
}

// SetLogger replaces the process wide logger
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// WithLogger returns a copy of ctx carrying l
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// With returns a copy of ctx whose logger has the given fields attached
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, Logger(ctx).With(fields...))
}

// Logger returns the logger attached to ctx, or the process wide one
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return l
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes the process wide logger
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = global.Sync()
}
