// Package logging holds the process-wide zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

var defaultLogger = zap.NewNop()

func Get() *zap.Logger {
	return defaultLogger
}

// Set replaces the process logger. Development mode logs to the console
// encoder; otherwise JSON.
func Set(level string, development bool) error {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return err
		}
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.Config{
			Development:      true,
			Encoding:         "console",
			EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		}
	}
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	defaultLogger = logger
	zap.ReplaceGlobals(logger)
	return nil
}

func Flush() {
	_ = defaultLogger.Sync()
}
