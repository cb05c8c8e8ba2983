// Package logging builds the zap logger shared by the CLI and servers.
// The validation core never logs.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogLevel  = "ICSCHECK_LOG_LEVEL"
	EnvLogFormat = "ICSCHECK_LOG_FORMAT"
)

// Options selects level and encoding. Empty fields fall back to the
// environment, then to warn/console.
type Options struct {
	Level  string
	Format string // console or json
}

// New builds a logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	applyEnvOverrides(&opts)

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	switch opts.Format {
	case "json":
		cfg.Encoding = "json"
	case "", "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
	default:
		return nil, fmt.Errorf("unknown log format %q (use console or json)", opts.Format)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("icscheck"), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func applyEnvOverrides(opts *Options) {
	if opts.Level == "" {
		opts.Level = os.Getenv(EnvLogLevel)
	}
	if opts.Format == "" {
		opts.Format = strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat)))
	}
}

// ParseLevel maps a level name to a zap level. Empty means warn.
func ParseLevel(raw string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zapcore.WarnLevel, nil
	case "debug", "trace":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off", "none":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
}
