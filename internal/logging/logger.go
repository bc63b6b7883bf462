// Package logging wraps log/slog with JSON output and per-game attributes.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels accepted in configuration
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the log file written inside the configured directory
const FileName = "debug.log"

// Logger is a structured logger. Child loggers share the parent's output.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	closer *fileCloser
}

type fileCloser struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger writes JSON lines to {dir}/debug.log, or to stderr when dir is
// empty. Unknown levels default to INFO.
func NewLogger(dir, level string) (*Logger, error) {
	var w io.Writer = os.Stderr
	closer := &fileCloser{}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closer.file = f
		w = f
	}

	l := New(w, level)
	l.closer = closer
	return l, nil
}

// New creates a Logger writing to w
func New(w io.Writer, level string) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(h), closer: &fileCloser{}}
}

// NopLogger discards everything
func NopLogger() *Logger {
	return New(io.Discard, LevelError)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevels lists accepted level strings
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// WithGame tags entries with the game id
func (l *Logger) WithGame(id string) *Logger {
	return l.With("game_id", id)
}

// WithPhase tags entries with the day and phase
func (l *Logger) WithPhase(day int, phase string) *Logger {
	return l.With("day", day, "phase", phase)
}

// With returns a child logger carrying extra key-value pairs
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(args...), closer: l.closer}
}

// Slog exposes the underlying logger for libraries that take *slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Close syncs and closes the log file. Writing to stderr makes this a no-op.
func (l *Logger) Close() error {
	l.closer.mu.Lock()
	defer l.closer.mu.Unlock()

	if l.closer.file == nil {
		return nil
	}
	if err := l.closer.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.closer.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.closer.file = nil
	return nil
}
