package wctx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestToValidLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LogLevel
	}{
		{name: "debug", input: "debug", want: DebugLevel},
		{name: "debugShort", input: "dbg", want: DebugLevel},
		{name: "info", input: "INFO", want: InfoLevel},
		{name: "error", input: "err", want: ErrorLevel},
		{name: "unknown", input: "whatever", want: InfoLevel},
		{name: "empty", input: "", want: InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toValidLevel(tt.input); got != tt.want {
				t.Errorf("toValidLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerDoesNotPanic(t *testing.T) {
	log := NewLogger("debug")
	log.Debug("debug line", "key", "value")
	log.Info("info line")
	log.Error("error line", "error", "boom")
	log.With("component", "test").Info("scoped line")
}

func TestNoopLogger(t *testing.T) {
	log := NewNoopLogger()
	log.Debug("ignored")
	log.Info("ignored")
	log.Error("ignored")
	if log.With("k", "v") == nil {
		t.Error("expected a logger from With")
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	mw := NewRequestLogger(NewNoopLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/path", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
}

func TestRequestLoggerNilLogger(t *testing.T) {
	mw := NewRequestLogger(nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
