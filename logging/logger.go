package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with the console+file tee used across slidekit
// tools. The slideruntime library itself never logs; Logger is consumed by
// the CLI and catalog scans.
type Logger struct {
	zap         *zap.Logger
	sugar       *zap.SugaredLogger
	development bool
	logFilePath string
}

// New creates a Logger writing to both the console and a rotating file at
// logFilePath. Development mode enables debug level and colored console
// output; production mode logs info and above as JSON.
func New(development bool, logFilePath string) (*Logger, error) {
	if logFilePath == "" {
		return nil, fmt.Errorf("logging: log file path is required")
	}

	level := zapcore.InfoLevel
	if development {
		level = zapcore.DebugLevel
	}

	core := NewMultiCore(level, logFilePath, development)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{
		zap:         zapLogger,
		sugar:       zapLogger.Sugar(),
		development: development,
		logFilePath: logFilePath,
	}, nil
}

// Sync flushes buffered entries. Call before exiting.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs at DebugLevel with structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

// Info logs at InfoLevel with structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

// Warn logs at WarnLevel with structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

// Error logs at ErrorLevel with structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

// Fatal logs at FatalLevel then exits.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, fields...)
}

// Debugf logs a formatted message at DebugLevel.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// Warnf logs a formatted message at WarnLevel.
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

// Errorf logs a formatted message at ErrorLevel.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// With returns a child logger carrying additional fields on every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.zap.With(fields...)
	return &Logger{
		zap:         child,
		sugar:       child.Sugar(),
		development: l.development,
		logFilePath: l.logFilePath,
	}
}

// Named adds a sub-logger name to identify the source of entries.
func (l *Logger) Named(name string) *Logger {
	child := l.zap.Named(name)
	return &Logger{
		zap:         child,
		sugar:       child.Sugar(),
		development: l.development,
		logFilePath: l.logFilePath,
	}
}

// Zap exposes the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// LogFilePath returns the path of the rotating log file.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}
