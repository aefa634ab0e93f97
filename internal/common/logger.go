package common

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cookinghub/internal/config"
)

// NewLogger builds the process logger from the logging section of the
// config. Format "json" uses the production encoder, anything else the
// console encoder.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	atomicLevel, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = atomicLevel
	if cfg.OutputPath != "" {
		zc.OutputPaths = []string{cfg.OutputPath}
	}

	return zc.Build()
}
