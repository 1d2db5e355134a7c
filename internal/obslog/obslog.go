// Package obslog constructs the engine's zap logger from run configuration,
// mirroring the teacher's cmd/server/main.go initLogger: a production JSON
// encoder for "json" format, a colorized development encoder otherwise, with
// the level gated by an atomic level built from the configured string.
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tstirrat/wow-threat-sub000/internal/runconfig"
)

// New builds a *zap.Logger from cfg (SPEC_FULL.md §A.1).
func New(cfg runconfig.LoggingConfig) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
