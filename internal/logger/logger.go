// Package logger provides structured logging with zap.
package logger

import "go.uber.org/zap"

// New creates a zap.Logger for the given environment. Production gets the
// sampled JSON config, everything else the human-readable development one.
func New(env string) *zap.Logger {
	switch env {
	case "production":
		logger, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	default:
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
}
