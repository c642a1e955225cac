// Package logger provides process-wide logging for the pim-etl CLI.
// Messages go to stderr through zap; an optional log file receives a copy.
// The --verbose flag forces debug level so users can follow each pipeline stage.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger. Zero values mean info level, console format
// and no log file.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "console" or "json".
	Format string

	// File is an optional path that receives a copy of every message.
	File string
}

var (
	mu        sync.RWMutex
	verbose   bool
	output    io.Writer = os.Stderr
	options   Options
	baseLevel = zapcore.InfoLevel
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logFile   *os.File
	sugar     *zap.SugaredLogger
)

func init() {
	rebuildLocked()
}

// Configure applies logging options from configuration.
func Configure(opts Options) error {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		lvl = parsed
	}

	switch opts.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: expected console or json", opts.Format)
	}

	var f *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	logFile = f
	options = opts
	baseLevel = lvl
	if !verbose {
		level.SetLevel(lvl)
	}
	rebuildLocked()
	return nil
}

// SetVerbose enables or disables verbose logging.
// Verbose mode logs at debug level regardless of the configured level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(baseLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuildLocked()
}

// Sync flushes buffered messages and closes the log file.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	var err error
	if sugar != nil {
		err = sugar.Sync()
	}
	closeFileLocked()
	rebuildLocked()
	return err
}

// Debug logs a message at debug level.
func Debug(format string, args ...any) {
	get().Debugf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	get().Debugf("=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	get().Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	get().Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	get().Errorf(format, args...)
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// rebuildLocked assembles the zap core. Callers hold mu.
func rebuildLocked() {
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(options.Format), zapcore.Lock(zapcore.AddSync(output)), level),
	}
	if logFile != nil {
		cores = append(cores, zapcore.NewCore(newEncoder(options.Format), zapcore.Lock(logFile), level))
	}
	sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func closeFileLocked() {
	if logFile == nil {
		return
	}
	_ = logFile.Sync()
	_ = logFile.Close()
	logFile = nil
}
