package wctx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, map[string]string{"key": "value"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}

	var envelope SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["key"] != "value" {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestRespondNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	Respond(rec, http.StatusNoContent, nil, nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "invalid input")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var envelope ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != http.StatusText(http.StatusBadRequest) {
		t.Errorf("unexpected code: %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "invalid input" {
		t.Errorf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestRespondCollection(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondCollection(rec, "entry", []string{"a", "b"}, 2)

	var envelope SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}

	data := envelope.Data.(map[string]any)
	entries, ok := data["entries"].([]any)
	if !ok || len(entries) != 2 {
		t.Errorf("expected pluralized key with 2 entries, got %v", data)
	}
	meta := envelope.Meta.(map[string]any)
	if meta["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", meta)
	}
}

func TestPluralizeHelpers(t *testing.T) {
	tests := []struct {
		name     string
		singular string
		plural   string
	}{
		{name: "regular", singular: "component", plural: "components"},
		{name: "sibilant", singular: "process", plural: "processes"},
		{name: "irregular", singular: "entry", plural: "entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pluralize(tt.singular); got != tt.plural {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.singular, got, tt.plural)
			}
			if got := Singularize(tt.plural); got != tt.singular {
				t.Errorf("Singularize(%q) = %q, want %q", tt.plural, got, tt.singular)
			}
		})
	}
}
