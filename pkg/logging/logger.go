package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// InitLogger initializes the structured logger
func InitLogger(level string, format string) error {
	var config zap.Config

	if format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	// Disable caller and stack trace for cleaner logs
	config.DisableCaller = true
	config.DisableStacktrace = true

	var err error
	Logger, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// L returns the global logger, or a no-op logger when InitLogger was never called.
// Library packages log through L so they stay usable without an initialized logger.
func L() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

// LogConversion logs the outcome of a Kubernetes conversion
func LogConversion(backend string, documents int, elapsed time.Duration, err error) {
	if err != nil {
		L().Warn("conversion failed",
			zap.String("backend", backend),
			zap.Int("documents", documents),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	L().Info("conversion complete",
		zap.String("backend", backend),
		zap.Int("documents", documents),
		zap.Duration("elapsed", elapsed),
	)
}
