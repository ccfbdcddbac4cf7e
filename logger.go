package wctx

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	ErrorLevel
)

// Logger is the structured logging seam shared by the container, loader and
// components.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger *slog.Logger
	level  LogLevel
}

// NewLogger builds a slog-backed Logger. Output is plain text unless
// LOG_FORMAT=json is set.
func NewLogger(logLevelStr string) Logger {
	level := toValidLevel(logLevelStr)

	var handler slog.Handler
	if jsonOutput() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(level),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(level),
		})
	}

	return &slogLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

func (l *slogLogger) Debug(msg string, args ...any) {
	if l.level <= DebugLevel {
		l.logger.Debug(msg, args...)
	}
}

func (l *slogLogger) Info(msg string, args ...any) {
	if l.level <= InfoLevel {
		l.logger.Info(msg, args...)
	}
}

func (l *slogLogger) Error(msg string, args ...any) {
	if l.level <= ErrorLevel {
		l.logger.Error(msg, args...)
	}
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		level:  l.level,
	}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}
func (noopLogger) With(args ...any) Logger       { return noopLogger{} }

func NewNoopLogger() Logger {
	return noopLogger{}
}

func toValidLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug", "dbg":
		return DebugLevel
	case "info", "inf":
		return InfoLevel
	case "error", "err":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func jsonOutput() bool {
	return os.Getenv("LOG_FORMAT") == "json"
}

// NewRequestLogger returns a chi RequestLogger middleware that emits
// structured request lifecycle logs using the provided application logger.
func NewRequestLogger(logger Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return chimiddleware.RequestLogger(&structuredLogFormatter{logger: logger})
}

type structuredLogFormatter struct {
	logger Logger
}

func (f *structuredLogFormatter) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	entryLogger := f.logger.With(
		"request_id", RequestIDFrom(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)

	entryLogger.Debug("request started",
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	return &structuredLogEntry{logger: entryLogger, start: time.Now()}
}

type structuredLogEntry struct {
	logger Logger
	start  time.Time
}

func (e *structuredLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.logger.Info("request completed",
		"status", status,
		"bytes", bytes,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

func (e *structuredLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("request panic",
		"panic", fmt.Sprint(v),
		"stack", string(stack),
	)
}
