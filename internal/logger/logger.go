package logger

import (
	"log"

	"benevita/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// Initialize sets up the global logger. Production gets JSON at info level,
// anything else a colored development console at debug level.
func Initialize() {
	var cfg zap.Config

	if config.AppConfig.IsProduction() {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

// Get retrieves the global logger, initializing it on first use.
func Get() *zap.Logger {
	if Logger == nil {
		Initialize()
	}
	return Logger
}

// Sugar returns the sugared form of the global logger.
func Sugar() *zap.SugaredLogger {
	return Get().Sugar()
}
