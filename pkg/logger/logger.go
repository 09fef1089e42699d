// Package logger builds the application's zap logger: human console
// output plus an optional rotated JSON file.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v3"
)

type Config struct {
	Level      string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the logger. LOG_LEVEL in the environment wins over the
// configured level.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("bad log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zapcore.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	logLevel := zap.NewAtomicLevelAt(level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(os.Stdout), logLevel),
	}

	if cfg.Filename != "" {
		fileHandler, err := lumberjack.New(
			lumberjack.WithFileName(cfg.Filename),
			lumberjack.WithMaxBytes(int64(cfg.MaxSizeMB)*1024*1024),
			lumberjack.WithMaxBackups(cfg.MaxBackups),
			lumberjack.WithMaxDays(cfg.MaxAgeDays),
			lumberjack.WithCompress(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create file handler: %w", err)
		}

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(fileHandler), logLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
