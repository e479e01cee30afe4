// Package logging provides categorized, config-driven logging for
// browsecore, backed by go.uber.org/zap. Each subsystem logs through its
// own Category so verbosity can be tuned independently, and StartTimer
// gives slow-operation visibility without littering call sites with
// manual time.Since bookkeeping.
package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem emitting a log line.
type Category string

const (
	CategoryKernel       Category = "kernel"
	CategoryMemory       Category = "memory"
	CategoryOrchestrator Category = "orchestrator"
	CategoryChangeTrack  Category = "changetracker"
	CategoryConfig       Category = "config"
)

var (
	mu     sync.RWMutex
	base   *zap.Logger
	loaded bool
)

// Configure installs the process-wide zap logger. debugMode selects debug
// level verbosity; otherwise info level is used. Safe to call multiple
// times (e.g. on config hot-reload).
func Configure(debugMode bool) error {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debugMode {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	if base != nil {
		_ = base.Sync()
	}
	base = logger
	loaded = true
	mu.Unlock()
	return nil
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if loaded {
		return base
	}
	return zap.NewNop()
}

// Logger is a category-scoped logging handle.
type Logger struct {
	category Category
}

// Get returns the logging handle for category.
func Get(category Category) *Logger {
	return &Logger{category: category}
}

func (l *Logger) zap() *zap.Logger {
	return current().With(zap.String("category", string(l.category)))
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap().Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap().Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap().Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap().Error(msg, fields...) }

// Sync flushes the underlying zap logger. Call on process shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Timer measures and logs the duration of an operation when Stop is called.
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
}

// StartTimer begins timing operation under category. Mirrors the teacher's
// logging.StartTimer instrumentation idiom (internal/embedding/engine.go).
func StartTimer(category Category, operation string) *Timer {
	return &Timer{logger: Get(category), operation: operation, start: time.Now()}
}

// Stop logs the elapsed duration at debug level.
func (t *Timer) Stop() {
	elapsed := time.Since(t.start)
	t.logger.Debug("operation completed", zap.String("op", t.operation), zap.Duration("elapsed", elapsed))
	if elapsed > 500*time.Millisecond {
		t.logger.Warn("slow operation", zap.String("op", t.operation), zap.Duration("elapsed", elapsed))
	}
}
