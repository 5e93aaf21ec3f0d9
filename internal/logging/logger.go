// Package logging provides config-driven categorized logging on top of zap.
// Each category is a named child of one root logger; categories switched off
// in the logging config get a no-op logger.
package logging

import (
	"fmt"
	"sync"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config
	CategoryLoad    Category = "load"    // Change set decoding
	CategoryCatalog Category = "catalog" // Symbol catalog and store
	CategoryRender  Category = "render"  // Ordering, formatting, templating
	CategoryWatch   Category = "watch"   // File watcher
	CategoryHistory Category = "history" // Render run ledger
)

// Categories lists every known category.
var Categories = []Category{
	CategoryBoot,
	CategoryLoad,
	CategoryCatalog,
	CategoryRender,
	CategoryWatch,
	CategoryHistory,
}

// Logger hands out per-category zap loggers.
type Logger struct {
	root *zap.Logger
	cfg  config.LoggingConfig

	mu      sync.RWMutex
	loggers map[Category]*zap.Logger
}

// New builds the root logger from cfg. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	zc := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	}

	root, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(root, cfg), nil
}

// Wrap categorizes an existing zap logger.
func Wrap(root *zap.Logger, cfg config.LoggingConfig) *Logger {
	if root == nil {
		root = zap.NewNop()
	}
	return &Logger{
		root:    root,
		cfg:     cfg,
		loggers: make(map[Category]*zap.Logger),
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return Wrap(zap.NewNop(), config.LoggingConfig{})
}

// Get returns the logger for a category, creating it on first use.
func (l *Logger) Get(category Category) *zap.Logger {
	l.mu.RLock()
	logger, ok := l.loggers[category]
	l.mu.RUnlock()
	if ok {
		return logger
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if logger, ok := l.loggers[category]; ok {
		return logger
	}
	if l.cfg.IsCategoryEnabled(string(category)) {
		logger = l.root.Named(string(category))
	} else {
		logger = zap.NewNop()
	}
	l.loggers[category] = logger
	return logger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.root.Sync()
}
