package logger

import "go.uber.org/zap"

type ZapLogger struct {
	log   *zap.SugaredLogger
	level zap.AtomicLevel
}

var zapLogger *ZapLogger

func NewLogger(config zap.Config) (*ZapLogger, error) {
	base, err := config.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	zapLogger = &ZapLogger{log: base.Sugar(), level: config.Level}
	return zapLogger, nil
}

func GetLogger() *ZapLogger {
	if zapLogger == nil {
		panic("logger not initialized")
	}
	return zapLogger
}

func (l *ZapLogger) With(keysAndValues ...any) *ZapLogger {
	return &ZapLogger{
		log:   l.log.Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...),
		level: l.level,
	}
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.log.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warnw(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *ZapLogger) Fatal(err error, keysAndValues ...any) {
	l.log.Fatalw(err.Error(), keysAndValues...)
}

// Printf lets fasthttp.Server use the logger.
func (l *ZapLogger) Printf(format string, args ...any) {
	l.log.Infof(format, args...)
}
