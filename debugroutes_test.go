package wctx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func debugGet(t *testing.T, c *Container, path string) (int, SuccessResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, req)

	var envelope SuccessResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return rec.Code, envelope
}

func TestDebugRoutesDisabledByDefault(t *testing.T) {
	c := NewContainer("host")

	req := httptest.NewRequest(http.MethodGet, "/debug/routes", nil)
	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestDebugRoutesListsRoutes(t *testing.T) {
	c := NewContainer("host", WithDebugRoutes())

	code, envelope := debugGet(t, c, "/debug/routes")
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}

	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", envelope.Data)
	}
	routes, ok := data["routes"].([]any)
	if !ok || len(routes) == 0 {
		t.Fatalf("expected pluralized routes list, got %v", data)
	}

	found := false
	for _, raw := range routes {
		route, _ := raw.(map[string]any)
		if route["pattern"] == "/ping" {
			found = true
		}
	}
	if !found {
		t.Error("expected /ping among routes")
	}
}

func TestDebugComponentsRequiresContext(t *testing.T) {
	c := NewContainer("host", WithDebugRoutes())

	code, _ := debugGet(t, c, "/debug/components")
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
}

func TestDebugComponentsListsNames(t *testing.T) {
	appctx := NewAppContext("app")
	if err := appctx.Register("greeter", struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := NewContainer("host",
		WithDebugRoutes(),
		WithListeners(NewLoaderListener(WithContext(appctx))),
	)
	if err := c.NotifyStarted(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, envelope := debugGet(t, c, "/debug/components")
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}

	data := envelope.Data.(map[string]any)
	components, ok := data["components"].([]any)
	if !ok || len(components) != 1 || components[0] != "greeter" {
		t.Errorf("expected [greeter], got %v", data)
	}

	meta, ok := envelope.Meta.(map[string]any)
	if !ok || meta["count"] != float64(1) {
		t.Errorf("expected count meta, got %v", envelope.Meta)
	}
}

func TestDebugAttributesMarksDisposable(t *testing.T) {
	c := NewContainer("host", WithDebugRoutes())
	c.SetAttribute("res", &trackedResource{})
	c.SetAttribute("plain", "value")

	code, envelope := debugGet(t, c, "/debug/attributes")
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}

	data := envelope.Data.(map[string]any)
	attrs, ok := data["attributes"].([]any)
	if !ok || len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %v", data)
	}

	byName := map[string]map[string]any{}
	for _, raw := range attrs {
		attr := raw.(map[string]any)
		byName[attr["name"].(string)] = attr
	}
	if byName["res"]["disposable"] != true {
		t.Error("expected res marked disposable")
	}
	if byName["plain"]["disposable"] != false {
		t.Error("expected plain not disposable")
	}
}
