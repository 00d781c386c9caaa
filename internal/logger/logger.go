// Package logger provides the structured logging used by the htmd command
// line and batch runner. The conversion packages never log.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	defaultLogger *slog.Logger
	mu            sync.RWMutex
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Options configures the logger.
type Options struct {
	// Level is one of debug, info, warn or error. Debug and Quiet take
	// precedence over it.
	Level  string
	Debug  bool
	Quiet  bool         // Only show errors
	JSON   bool         // Output as JSON
	Pretty bool         // Colored human output; ignored when JSON is set
	Output io.Writer    // Output destination (default: stderr)
	Logger *slog.Logger // Custom logger (overrides all other options)
}

// Init replaces the package logger according to opts.
func Init(opts Options) {
	l := New(opts)
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// New builds a logger from opts without installing it.
func New(opts Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}

	level := ParseLevel(opts.Level)
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	switch {
	case opts.JSON:
		return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level}))
	case opts.Pretty:
		return slog.New(charmlog.NewWithOptions(output, charmlog.Options{
			Level:           charmLevel(level),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		}))
	default:
		return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}

// SetLogger installs a custom slog.Logger.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Default returns the installed logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	Default().DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	Default().WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}
