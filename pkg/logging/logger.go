// Package logging builds the zap loggers used by the surfacesfetus commands.
// Core packages return errors and never log; only the command layer holds a logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig carries the parameters needed to construct a logger
type LogConfig struct {
	// Level is one of debug, info, warn or error; anything else means info
	Level string `yaml:"level"`

	// Format is "console" for human-readable output or "json"
	Format string `yaml:"format"`

	// OutputPaths lists zap sinks; defaults to stderr so that command
	// results written to stdout stay machine-readable
	OutputPaths []string `yaml:"outputPaths"`
}

// parseLevel converts a string level to a zapcore.Level.
// Unknown values default to InfoLevel.
func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig(format string) zapcore.EncoderConfig {
	var encCfg zapcore.EncoderConfig
	if format == "json" {
		encCfg = zap.NewProductionEncoderConfig()
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encCfg
}

func encoding(format string) string {
	if format == "json" {
		return "json"
	}
	return "console"
}

// NewLogger constructs a zap logger according to cfg
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:          encoding(cfg.Format),
		EncoderConfig:     encoderConfig(cfg.Format),
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewWriterLogger constructs a logger that writes to w instead of a named sink.
// Commands use it to send logs to their configured error stream.
func NewWriterLogger(cfg LogConfig, w io.Writer) *zap.Logger {
	var enc zapcore.Encoder
	if encoding(cfg.Format) == "json" {
		enc = zapcore.NewJSONEncoder(encoderConfig(cfg.Format))
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig(cfg.Format))
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), parseLevel(cfg.Level))
	return zap.New(core)
}

// NewNop returns a logger that discards everything
func NewNop() *zap.Logger {
	return zap.NewNop()
}
