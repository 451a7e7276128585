// Package logger builds the zap logger used across toolscout. Console output
// goes to the writer the caller provides; an optional rotating file always
// receives JSON.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gzhole/toolscout/internal/config"
)

// Name is the root logger name.
const Name = "toolscout"

// New creates a logger writing to out. terminal reports whether out is an
// interactive terminal; it selects the encoder when cfg.Format is "auto"
// and enables colored levels.
func New(cfg config.LoggerConfig, out zapcore.WriteSyncer, terminal bool) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	format := ResolveFormat(cfg.Format, terminal)
	cores := []zapcore.Core{
		zapcore.NewCore(encoder(format, terminal), out, level),
	}
	if cfg.LogFile != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json", false), file, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named(Name), nil
}

// ResolveFormat maps "auto" to "console" on a terminal and "json" elsewhere.
func ResolveFormat(format string, terminal bool) string {
	if format != "auto" && format != "" {
		return format
	}
	if terminal {
		return "console"
	}
	return "json"
}

func encoder(format string, color bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	if format == "console" {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}
