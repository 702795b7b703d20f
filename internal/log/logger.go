package log

import (
	"os"

	"billstack/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelNames = map[string]zapcore.Level{
	"debug":  zap.DebugLevel,
	"info":   zap.InfoLevel,
	"warn":   zap.WarnLevel,
	"error":  zap.ErrorLevel,
	"dpanic": zap.DPanicLevel,
	"panic":  zap.PanicLevel,
	"fatal":  zap.FatalLevel,
}

// NewLogger JSON 結構化輸出，warn 以下走 stdout、warn 以上走 stderr，
// 兩路共用同一個全域層級門檻。
func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	minLevel, ok := levelNames[conf.Log.Level]
	if !ok {
		minLevel = zap.InfoLevel
	}
	atomicLevel := zap.NewAtomicLevelAt(minLevel)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.TimeKey = "ts"
	encoderConfig.CallerKey = "caller"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	stdoutLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomicLevel.Enabled(l) && l < zapcore.WarnLevel
	})
	stderrLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomicLevel.Enabled(l) && l >= zapcore.WarnLevel
	})

	tee := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), stdoutLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), stderrLevel),
	)

	logger := zap.New(tee,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	logger.Info("zap logger initialized", zap.String("level", minLevel.String()))

	return logger, nil
}
