// Package logutil sets up the process-wide zap logger. Logs go to stderr
// (or a rotated file) so stdout carries only benchmark results.
package logutil

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig describes the logger.
type LogConfig struct {
	Level    string // debug, info, warn, error, fatal
	Format   string // console or json
	Filename string // empty means stderr

	// rotation, only used with Filename
	MaxSize    int // megabytes
	MaxDays    int
	MaxBackups int
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() *LogConfig {
	return &LogConfig{
		Level:  zapcore.InfoLevel.String(),
		Format: "console",
	}
}

var globalLogger atomic.Pointer[zap.Logger]

func init() {
	globalLogger.Store(zap.NewNop())
}

// SetupLogger builds a logger from cfg and installs it as the global
// logger.
func SetupLogger(cfg *LogConfig) (*zap.Logger, error) {
	level, err := cfg.getLevel()
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(cfg.getEncoder(), cfg.getSyncer(), level)
	logger := zap.New(core, cfg.getOptions()...)
	ReplaceGlobalLogger(logger)
	return logger, nil
}

// ReplaceGlobalLogger installs logger as the global logger and returns a
// function that restores the previous one.
func ReplaceGlobalLogger(logger *zap.Logger) func() {
	prev := globalLogger.Swap(logger)
	return func() {
		globalLogger.Store(prev)
	}
}

// GetGlobalLogger returns the logger installed by SetupLogger, or a no-op
// logger before that.
func GetGlobalLogger() *zap.Logger {
	return globalLogger.Load()
}

func (cfg *LogConfig) getLevel() (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(cfg.Level)
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	return getLoggerEncoder(cfg.Format)
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return getConsoleSyncer()
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	})
}

func (cfg *LogConfig) getOptions() []zap.Option {
	return []zap.Option{zap.AddStacktrace(zapcore.FatalLevel), zap.AddCaller()}
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getConsoleSyncer() zapcore.WriteSyncer {
	return zapcore.Lock(os.Stderr)
}

func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}
