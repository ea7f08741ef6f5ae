package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments understood by Initialize.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Log is the global SugaredLogger instance.
// Initialized with a no-op logger until Initialize is called.
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Initialize sets up the global logger with the given log level.
// Development environments get a human readable console encoder,
// everything else gets production JSON.
func Initialize(level, env string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	if env == EnvDevelopment {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = logger.Sugar().With("env", env)
	return nil
}
