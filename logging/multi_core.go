package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
)

// NewMultiCore builds a zapcore.Core that tees every entry to the console
// and to a rotating log file. Development mode uses a colored console
// encoder; production mode emits JSON on both sinks.
func NewMultiCore(level zapcore.Level, logPath string, development bool) zapcore.Core {
	return NewMultiCoreWithWriters(level,
		zapcore.Lock(os.Stderr),
		NewFileWriter(logPath),
		development)
}

// NewMultiCoreWithWriters is NewMultiCore with caller-supplied sinks,
// used by tests.
func NewMultiCoreWithWriters(level zapcore.Level, console, file zapcore.WriteSyncer, development bool) zapcore.Core {
	fileEncoder := zapcore.NewJSONEncoder(productionEncoderConfig())

	var consoleEncoder zapcore.Encoder
	if development {
		consoleEncoder = zapcore.NewConsoleEncoder(developmentEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(productionEncoderConfig())
	}

	return zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, console, level),
		zapcore.NewCore(fileEncoder, file, level),
	)
}

func productionEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func developmentEncoderConfig() zapcore.EncoderConfig {
	cfg := productionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
