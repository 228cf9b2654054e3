package infra

import (
	"os"

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

// Create returns a child logger named after the component using it.
func (f *LoggerFactory) Create(name string) *zap.Logger {
	return f.baseLogger.Named(name)
}

// NewLoggerFactory wraps an existing logger. Tests use it with zap.NewNop().
func NewLoggerFactory(baseLogger *zap.Logger) *LoggerFactory {
	return &LoggerFactory{
		baseLogger: baseLogger,
	}
}

// ProvideLoggerFactory returns a cleanup that flushes buffered logs.
func ProvideLoggerFactory() (*LoggerFactory, func()) {
	// LOG_ENCODING=json is used when logs are shipped, console otherwise.
	encoding := os.Getenv("LOG_ENCODING")
	encodeLevel := zapcore.LowercaseLevelEncoder
	if encoding != "json" {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var cfg = zap.Config{
		Level:            LoggerLevel,
		Development:      false,
		Encoding:         encoding,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "name",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
	logger := zap.Must(cfg.Build())
	logger.Info("logger created", zap.String("encoding", encoding))

	return NewLoggerFactory(logger), func() {
		logger.Sync()
	}
}
