package observability

import (
	"log/slog"
	"os"
)

// Logger is the global logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger. Production gets JSON,
// development gets text.
func InitLogger(production bool) {
	InitLoggerWithLevel(production, slog.LevelInfo)
}

// InitLoggerWithLevel initializes the logger with a specific log level.
func InitLoggerWithLevel(production bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func logger() *slog.Logger {
	if Logger == nil {
		InitLogger(false)
	}
	return Logger
}

// Info logs an info message.
func Info(msg string, args ...any) { logger().Info(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { logger().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { logger().Error(msg, args...) }

// Debug logs a debug message.
func Debug(msg string, args ...any) { logger().Debug(msg, args...) }

// Fatal logs an error message and exits.
func Fatal(msg string, args ...any) {
	logger().Error(msg, args...)
	os.Exit(1)
}

// WithSymbol returns a logger with the ticker symbol attached.
func WithSymbol(symbol string) *slog.Logger {
	return logger().With("symbol", symbol)
}

// WithProvider returns a logger with the data provider attached.
func WithProvider(provider string) *slog.Logger {
	return logger().With("provider", provider)
}

// WithRequest returns a logger with the research request ID attached.
func WithRequest(requestID string) *slog.Logger {
	return logger().With("request_id", requestID)
}
