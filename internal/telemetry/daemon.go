package telemetry

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DaemonLoggerConfig controls where and how the watcher's background
// logger writes. SidecarDir is R/.autosnap; the log file spec.md §6 names
// lives at SidecarDir/autosnap.log and is rotated by lumberjack.
type DaemonLoggerConfig struct {
	SidecarDir string
	Level      string // debug, info, warn, error
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewDaemonLogger builds a zap logger that writes structured JSON lines
// into a rotating log file, grounded on the ethereum-go-ethereum /
// jvs-project dependency pair (lumberjack + zap) rather than the
// teacher's bare log.Printf, since a long-lived daemon needs rotation and
// structure that stdlib's log package doesn't provide.
func NewDaemonLogger(cfg DaemonLoggerConfig) (*zap.Logger, error) {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 28
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.SidecarDir, "autosnap.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return zap.New(core), nil
}
