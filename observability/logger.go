package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger is the global logger instance
var Logger *slog.Logger

// loggerMu guards assignment of Logger
var loggerMu sync.Mutex

// LogOptions configures the global logger
type LogOptions struct {
	// JSON selects the JSON handler; text is used otherwise
	JSON  bool
	Level slog.Level
	// Output defaults to os.Stdout
	Output io.Writer
}

// SetupLogger replaces the global logger and makes it the slog default
func SetupLogger(opts LogOptions) *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return setupLocked(opts)
}

func setupLocked(opts LogOptions) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	return Logger
}

// ParseLevel maps a level name to a slog level, defaulting to info
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

func logger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if Logger == nil {
		return setupLocked(LogOptions{Level: slog.LevelInfo})
	}
	return Logger
}

// WithContext returns a logger carrying the request ID set by chi's RequestID middleware
func WithContext(ctx context.Context) *slog.Logger {
	l := logger()
	if id := middleware.GetReqID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

// Info logs an info message
func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// WithSymbol returns a logger with symbol field
func WithSymbol(symbol string) *slog.Logger {
	return logger().With("symbol", symbol)
}

// WithSession returns a logger with session id field
func WithSession(sessionID string) *slog.Logger {
	return logger().With("session_id", sessionID)
}
