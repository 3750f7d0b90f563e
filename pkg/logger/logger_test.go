package logger

import (
	"testing"

	"github.com/GlebRadaev/exchange/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name           string
		logLvl         string
		logFormat      string
		expectedError  bool
		expectedLogLvl zapcore.Level
	}{
		{"Valid log level debug", "debug", "", false, zapcore.DebugLevel},
		{"Valid log level info", "info", "console", false, zapcore.InfoLevel},
		{"Valid log level warn", "warn", "json", false, zapcore.WarnLevel},
		{"Valid log level error", "error", "", false, zapcore.ErrorLevel},
		{"Invalid log level", "verbose", "", true, zapcore.InfoLevel},
		{"Invalid log format", "info", "xml", true, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(&config.Config{LogLvl: tt.logLvl, LogFormat: tt.logFormat})

			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.expectedLogLvl))
			if tt.expectedLogLvl > zapcore.DebugLevel {
				assert.False(t, zap.L().Core().Enabled(tt.expectedLogLvl-1))
			}
		})
	}
}

func TestEncoderFor(t *testing.T) {
	encoding, cfg, err := encoderFor("json")
	require.NoError(t, err)
	assert.Equal(t, "json", encoding)
	assert.Equal(t, "stacktrace", cfg.StacktraceKey)

	encoding, cfg, err = encoderFor("")
	require.NoError(t, err)
	assert.Equal(t, "console", encoding)
	assert.Empty(t, cfg.StacktraceKey)
}
