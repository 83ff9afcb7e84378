// Package logger provides structured logging built on zap.
// Log functions accept context and automatically attach tracing fields.
package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "stockroom/internal/core/context"
)

var global *zap.SugaredLogger

func init() {
	// Default logger until Init is called (useful for tests)
	l, _ := zap.NewDevelopment()
	global = l.Sugar()
}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder with colors vs JSON
	ServiceName string // attached to every entry
}

// Init configures the global logger. Call once at startup.
func Init(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	global = l.Sugar()
	return nil
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	_ = global.Sync()
}

// withContext returns a logger enriched with tracing fields from context.
func withContext(ctx context.Context) *zap.SugaredLogger {
	l := global
	if ctx == nil {
		return l
	}
	if trace := appctx.GetTrace(ctx); trace != nil {
		if trace.TraceID != "" {
			l = l.With("trace_id", trace.TraceID)
		}
		if trace.RequestID != "" {
			l = l.With("request_id", trace.RequestID)
		}
	}
	return l
}

// Debug logs a debug message with key-value pairs.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	withContext(ctx).Debugw(msg, keysAndValues...)
}

// Info logs an info message with key-value pairs.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	withContext(ctx).Infow(msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	withContext(ctx).Warnw(msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	withContext(ctx).Errorw(msg, keysAndValues...)
}

// Fatal logs a fatal message and exits.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	withContext(ctx).Fatalw(msg, keysAndValues...)
}
