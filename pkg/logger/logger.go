package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	Fatal(err error, keysAndValues ...any)
	Printf(format string, args ...any)
}

// init builds the process-wide logger from LOG_ENV and LOG_LEVEL so that
// packages can log before config is loaded.
func init() {
	if _, err := NewLogger(configFromEnv()); err != nil {
		panic(err)
	}
}

func configFromEnv() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	if os.Getenv("LOG_ENV") == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}
	return cfg
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(level string) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		Warn("ignoring unknown log level", "level", level)
		return
	}
	GetLogger().level.SetLevel(parsed)
}

func Debug(msg string, keysAndValues ...any) {
	GetLogger().Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	GetLogger().Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	GetLogger().Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	GetLogger().Error(msg, keysAndValues...)
}

func Fatal(err error, keysAndValues ...any) {
	GetLogger().Fatal(err, keysAndValues...)
}

// With returns a child logger carrying the given fields on every entry.
func With(keysAndValues ...any) Logger {
	return GetLogger().With(keysAndValues...)
}

func Sync() {
	_ = GetLogger().log.Sync()
}
