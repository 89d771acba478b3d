// Package logger keeps the InfoLogger/ErrorLogger call sites used across the
// app while routing everything through a zap core.
package logger

import (
	"log"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// InfoLogger oddiy xabarlar uchun
	InfoLogger = log.New(os.Stdout, "INFO: ", log.LstdFlags)
	// ErrorLogger xatolar uchun
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.LstdFlags)

	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init loggerni ishga tushirish. LOG_LEVEL env (debug|info|warn|error) darajani belgilaydi.
func Init() {
	InitWithLevel(os.Getenv("LOG_LEVEL"))
}

// InitWithLevel builds the production zap logger at the given level and rewires
// the std-log adapters and the standard library's default logger to it.
func InitWithLevel(level string) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		log.Printf("zap init failed, keeping std logger: %v", err)
		return
	}
	set(z)
}

// Set replaces the underlying zap logger (tests use zaptest/observer cores).
func Set(z *zap.Logger) {
	if z == nil {
		z = zap.NewNop()
	}
	set(z)
}

func set(z *zap.Logger) {
	mu.Lock()
	base = z
	mu.Unlock()

	if l, err := zap.NewStdLogAt(z, zapcore.InfoLevel); err == nil {
		InfoLogger = l
	}
	if l, err := zap.NewStdLogAt(z, zapcore.ErrorLevel); err == nil {
		ErrorLogger = l
	}
	zap.RedirectStdLog(z)
}

// L structured logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
