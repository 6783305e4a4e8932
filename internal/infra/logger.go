package infra

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Allow changing log level at run time.
	LoggerLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

type LoggerFactory struct {
	baseLogger *zap.Logger
}

func (f *LoggerFactory) Create(name string) *zap.Logger {
	return f.baseLogger.Named(name)
}

func (f *LoggerFactory) Sync() error {
	return f.baseLogger.Sync()
}

// NewNopLoggerFactory is used by tests and tools that want no output.
func NewNopLoggerFactory() *LoggerFactory {
	return &LoggerFactory{baseLogger: zap.NewNop()}
}

// ProvideLoggerFactory builds the console logger every component names
// itself from. level is parsed with zapcore ("debug", "info", ...); an
// unknown value keeps info.
func ProvideLoggerFactory(level string) *LoggerFactory {
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		LoggerLevel.SetLevel(lvl)
	}

	var cfg = zap.Config{
		Level:            LoggerLevel,
		Development:      false,
		Encoding:         "console",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			// Keys can be anything except the empty string.
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "name",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
	logger := zap.Must(cfg.Build())
	logger.Info("logger created")

	return &LoggerFactory{
		baseLogger: logger,
	}
}
