// Package logger builds the structured loggers used across jsdocts.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/jsdocts/internal/errors"
)

// Standard field names for consistent structured logging.
const (
	FieldFile     = "file"
	FieldPath     = "path"
	FieldModuleID = "module_id"
	FieldOrigin   = "origin"
	FieldExport   = "export"
	FieldCount    = "count"
	FieldError    = "error"
)

// Options configures New.
type Options struct {
	JSON   bool
	Level  string    // debug, info, warn or error; empty means info
	Output io.Writer // defaults to stderr
}

// Nop returns a logger that discards everything. Library code falls back to
// it when the caller passes nil.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// New builds a sugared logger writing to opts.Output.
func New(opts Options) (*zap.SugaredLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core).Sugar(), nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zap.InfoLevel, nil
	case "debug":
		return zap.DebugLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, errors.NewConfigError("unknown log level %q", name)
	}
}
