package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создаёт JSON-логгер: info (и debug при debug=true) в stdout, warn и выше в stderr.
func New(debug bool) *zap.Logger {
	infoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if debug && level == zapcore.DebugLevel {
			return true
		}
		return level == zapcore.InfoLevel
	})

	warnErrorFatalLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	if debug {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(os.Stdout), infoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(os.Stderr), warnErrorFatalLevel),
	)

	return zap.New(core)
}
