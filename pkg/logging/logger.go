// Package logging wraps zap with the leveled, printf-style surface the
// rest of this module's ancestry used (Trace/Debug/Info/Warn/Error/
// Fatal, each with an f-variant), backed by a lumberjack-rotated file
// sink instead of hand-rolled ANSI coloring.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled logger. The zero value is not usable; build one
// with New or NewDefault.
type Logger struct {
	z *zap.SugaredLogger
}

// Options configures where and how a Logger writes.
type Options struct {
	// FilePath is the log file lumberjack rotates. Empty disables file
	// output (stderr only).
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Level is the minimum level that gets emitted.
	Level zapcore.Level
	// AlsoStderr mirrors output to stderr in addition to FilePath.
	AlsoStderr bool
}

// DefaultOptions is info level, stderr only, no rotation.
func DefaultOptions() Options {
	return Options{Level: zapcore.InfoLevel, AlsoStderr: true}
}

// New builds a Logger from opts.
func New(opts Options) *Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	var sinks []zapcore.WriteSyncer
	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    nonZero(opts.MaxSizeMB, 100),
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
	}
	if opts.AlsoStderr || opts.FilePath == "" {
		sinks = append(sinks, zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), opts.Level)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{z: z.Sugar()}
}

// NewDefault builds a Logger from DefaultOptions.
func NewDefault() *Logger { return New(DefaultOptions()) }

func nonZero(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// With returns a child Logger with the given structured key/value pairs
// attached to every subsequent entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

func (l *Logger) Trace(msg string)                          { l.z.Debugw(msg) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.z.Debugf(format, args...) }
func (l *Logger) Debug(msg string)                          { l.z.Debugw(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.z.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.z.Infow(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.z.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.z.Warnw(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.z.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.z.Errorw(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.z.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.z.Fatalw(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.z.Fatalf(format, args...) }

func (l *Logger) Panic(msg string) {
	l.z.Errorw(msg)
	panic(msg)
}

func (l *Logger) Panicf(format string, args ...interface{}) {
	l.z.Errorf(format, args...)
	panic(fmt.Sprintf(format, args...))
}

// Sync flushes any buffered log entries. Callers should defer it after
// constructing a Logger meant to outlive a single request.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
