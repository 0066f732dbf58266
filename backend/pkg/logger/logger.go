package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Every entry carries the service name so aggregated logs stay attributable.
const serviceName = "knowledge-store"

// Logger is a global logger instance
var Logger *zap.Logger

// Init initializes the global logger. In production the logger emits JSON at
// info level; otherwise it uses the colored console encoder at debug level.
func Init(env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]any{"service": serviceName}

	var err error
	Logger, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Get returns the global logger instance
func Get() *zap.Logger {
	if Logger == nil {
		// Fallback to a basic logger if not initialized
		logger, _ := zap.NewDevelopment()
		return logger.With(zap.String("service", serviceName))
	}
	return Logger
}

// Component returns the global logger scoped to one component of the
// service, e.g. the graph store or the HTTP layer.
func Component(name string) *zap.Logger {
	return Get().Named(name)
}
