// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log provides the structured logger the service daemons in this
// module use, built directly on zap. Field
// construction mirrors zap's own so call sites read the same whether they
// hold a *zap.Logger or this wrapper.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every component logs through.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	z *zap.Logger
}

// New creates a logger at info level, writing human-readable output to
// stderr — the default for interactive CLI use.
func New() Logger {
	return NewWithLevel("info")
}

// NewWithLevel creates a logger at the named level ("debug", "info", "warn",
// "error"); unrecognized levels fall back to "info".
func NewWithLevel(level string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	z, err := cfg.Build()
	if err != nil {
		return NoOp()
	}
	return &zapLogger{z: z}
}

// NewNamed creates a logger at info level tagged with name, for services
// that run several named subsystems in one process.
func NewNamed(name string) Logger {
	l := New()
	if zl, ok := l.(*zapLogger); ok {
		return &zapLogger{z: zl.z.Named(name)}
	}
	return l
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }
func (l *zapLogger) With(fields ...zap.Field) Logger       { return &zapLogger{z: l.z.With(fields...)} }
func (l *zapLogger) Sync() error                           { return l.z.Sync() }

// noOpLogger discards everything; used when zap construction fails (never
// expected in practice) and in tests that don't want log noise.
type noOpLogger struct{}

// NoOp returns a logger that discards everything.
func NoOp() Logger { return noOpLogger{} }

// NoLog is a shared no-op logger instance.
var NoLog = NoOp()

func (noOpLogger) Debug(string, ...zap.Field) {}
func (noOpLogger) Info(string, ...zap.Field)  {}
func (noOpLogger) Warn(string, ...zap.Field)  {}
func (noOpLogger) Error(string, ...zap.Field) {}
func (noOpLogger) Fatal(string, ...zap.Field) {}
func (noOpLogger) With(...zap.Field) Logger   { return noOpLogger{} }
func (noOpLogger) Sync() error                { return nil }

// String, Int and Err mirror zap's field constructors so call sites don't
// need a direct zap import just to attach a field.
func String(key, val string) zap.Field  { return zap.String(key, val) }
func Int(key string, val int) zap.Field { return zap.Int(key, val) }
func Err(err error) zap.Field           { return zap.Error(err) }
