package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize_ValidLevels(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	levels := []string{"debug", "info", "warn", "error"}

	for _, env := range []string{EnvProduction, EnvDevelopment} {
		for _, lvl := range levels {
			t.Run(env+"/"+lvl, func(t *testing.T) {
				err := Initialize(lvl, env)
				assert.NoError(t, err, "expected no error for level %s", lvl)
				assert.IsType(t, &zap.SugaredLogger{}, Log)

				want, _ := zapcore.ParseLevel(lvl)
				assert.True(t, Log.Desugar().Core().Enabled(want))

				assert.NotPanics(t, func() {
					Log.Infow("test log", "level", lvl)
				})
			})
		}
	}
}

func TestInitialize_LevelFiltersBelow(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	err := Initialize("warn", EnvProduction)
	assert.NoError(t, err)
	assert.False(t, Log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Desugar().Core().Enabled(zapcore.ErrorLevel))
}

func TestInitialize_InvalidLevel(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	err := Initialize("not-a-level", EnvProduction)
	assert.Error(t, err, "expected error for invalid log level")
	assert.Same(t, originalLog, Log, "logger must stay untouched on error")
}

func TestLog_NopBeforeInitialize(t *testing.T) {
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() {
		Log.Infow("nop logger test")
	})
}
