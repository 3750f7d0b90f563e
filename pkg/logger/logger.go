package logger

import (
	"fmt"

	"github.com/GlebRadaev/exchange/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05 02-01-2006"

var logLvlMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// InitLogger builds the process-wide zap logger and installs it as zap.L().
// LogFormat "json" switches to machine readable output for log shippers.
func InitLogger(conf *config.Config) error {
	lvl, ok := logLvlMap[conf.LogLvl]
	if !ok {
		return fmt.Errorf("unsupported log lvl: %s", conf.LogLvl)
	}

	encoding, encodeConfig, err := encoderFor(conf.LogFormat)
	if err != nil {
		return err
	}

	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         encoding,
		EncoderConfig:    encodeConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		return fmt.Errorf("unable to create zap logger, error: %w", err)
	}

	zap.ReplaceGlobals(logger.Named("exchange"))

	return nil
}

func encoderFor(format string) (string, zapcore.EncoderConfig, error) {
	encodeConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch format {
	case "", "console":
		encodeConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encodeConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return "console", encodeConfig, nil
	case "json":
		encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encodeConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encodeConfig.StacktraceKey = "stacktrace"
		return "json", encodeConfig, nil
	}
	return "", encodeConfig, fmt.Errorf("unsupported log format: %s", format)
}
