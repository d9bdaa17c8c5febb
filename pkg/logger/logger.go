package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger configured for the given environment.
// Production uses JSON output with ISO8601 timestamps; everything else
// gets the colored development config.
func New(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// NewNamed creates a logger for the given environment with a service name
// attached to every entry.
func NewNamed(environment, service string) (*zap.Logger, error) {
	log, err := New(environment)
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
