// Package trace provides structured logging for lsp2gxl.
//
// Output goes to stderr by default, in human-readable text; an optional
// log directory adds a second JSON-formatted destination for later
// inspection of a run. The CLI installs its Logger as the slog default, so
// the LSP packages (lspclient, lsphandler), which log through the slog
// package functions, reach the same destinations and a single -v flag
// controls verbosity uniformly.
//
// # Error Tracking
//
// The CLI's exit code depends on whether any Error-level message was
// logged during the run (see Logger.HadErrors), not just whether the
// top-level command returned an error. HadErrors counts only Error calls
// made on a Logger (or a Logger derived from it via With); records written
// through the slog package functions are not counted. The importer does
// not log a failed file at all: it counts node-phase failures in its
// importer_node_errors_total metric and presses on.
package trace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// LOG LEVELS
// =============================================================================

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config configures a Logger. A zero-value Config logs Debug+ text to
// stderr, since LevelDebug is the zero Level.
type Config struct {
	// Level is the minimum level written to any destination.
	Level Level

	// LogDir, if set, additionally writes JSON-formatted logs to
	// "{LogDir}/{Service}_{YYYY-MM-DD}.log". Supports leading "~".
	LogDir string

	// Service names the component in every log entry (e.g. "importer").
	Service string

	// JSON formats the stderr destination as JSON instead of text. File
	// logs are always JSON regardless of this setting.
	JSON bool

	// Quiet disables the stderr destination; file logging (if configured)
	// is unaffected.
	Quiet bool
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger wraps slog.Logger with multi-destination output and a running
// tally of how many Error-level messages have been logged.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Logger struct {
	slog *slog.Logger

	config Config
	file   *os.File

	errorCount *atomic.Int64
	mu         sync.Mutex
}

// New creates a Logger per config. The returned Logger should be closed
// with Close to flush and release its log file.
func New(config Config) *Logger {
	var handlers []slog.Handler

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	if !config.Quiet {
		var h slog.Handler
		if config.JSON {
			h = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			h = slog.NewTextHandler(os.Stderr, opts)
		}
		handlers = append(handlers, h)
	}

	logger := &Logger{config: config, errorCount: &atomic.Int64{}}

	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0750); err == nil {
			service := config.Service
			if service == "" {
				service = "lsp2gxl"
			}
			filename := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			logPath := filepath.Join(logDir, filename)
			if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640); err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a Logger at Info level, writing text to stderr only.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "lsp2gxl"})
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a child Logger carrying additional attributes on every
// subsequent call. The parent is not modified; the error counter is shared.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:       l.slog.With(args...),
		config:     l.config,
		file:       l.file,
		errorCount: l.errorCount,
	}
}

// Slog returns the underlying slog.Logger for callers that need direct
// access to slog features (LogAttrs, custom handlers).
func (l *Logger) Slog() *slog.Logger { return l.slog }

// HadErrors reports whether any Error-level message has been logged
// through this Logger or any Logger derived from it via With. The CLI
// uses this to decide its exit code independently of whether the
// top-level command itself returned an error.
func (l *Logger) HadErrors() bool {
	return l.errorCount.Load() > 0
}

// Close syncs and closes the log file, if one is open. Idempotent.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level == LevelError {
		l.errorCount.Add(1)
	}
	switch level {
	case LevelDebug:
		l.slog.Debug(msg, args...)
	case LevelInfo:
		l.slog.Info(msg, args...)
	case LevelWarn:
		l.slog.Warn(msg, args...)
	case LevelError:
		l.slog.Error(msg, args...)
	}
}

// =============================================================================
// MULTI-HANDLER
// =============================================================================

// multiHandler fans a record out to multiple slog handlers, letting stderr
// and the optional log file use independent formats.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading "~" to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
