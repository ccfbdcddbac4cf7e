package wctx

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSourcesEnvAndArgs(t *testing.T) {
	t.Setenv("LOADTEST_HTTP_PORT", ":7070")

	cfg := NewConfig()
	err := cfg.LoadSources("LOADTEST", []string{"--log.level=debug", "--verbose"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := cfg.GetStringOrDef("http.port", ""); v != ":7070" {
		t.Errorf("expected env value, got %q", v)
	}
	if v := cfg.GetStringOrDef("log.level", ""); v != "debug" {
		t.Errorf("expected arg value, got %q", v)
	}
	if !cfg.GetBoolOrDef("verbose", false) {
		t.Error("expected bare flag to read true")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("", []string{"--app.name", "demo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := cfg.GetStringOrDef("app.name", ""); v != "demo" {
		t.Errorf("expected arg value, got %q", v)
	}
}

func TestLoadLocations(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	if err := os.WriteFile(first, []byte("key: one\nother: first\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(second, []byte("key: two\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := NewConfig()
	if err := cfg.LoadLocations(first, "", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// later locations override earlier ones
	if v := cfg.GetStringOrDef("key", ""); v != "two" {
		t.Errorf("expected override, got %q", v)
	}
	if v := cfg.GetStringOrDef("other", ""); v != "first" {
		t.Errorf("expected first file value, got %q", v)
	}
}

func TestLoadLocationsMissingFile(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.LoadLocations("does-not-exist.yaml"); err == nil {
		t.Error("expected error")
	}
}

func TestParseArgsToMap(t *testing.T) {
	tests := []struct {
		name string
		args []string
		key  string
		want string
	}{
		{name: "keyEqualsValue", args: []string{"--http.port=:8080"}, key: "http.port", want: ":8080"},
		{name: "keySpaceValue", args: []string{"--http.port", ":8080"}, key: "http.port", want: ":8080"},
		{name: "bareFlag", args: []string{"--debug"}, key: "debug", want: "true"},
		{name: "underscoresToDots", args: []string{"--log_level=info"}, key: "log.level", want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := parseArgsToMap(tt.args)
			if kv[tt.key] != tt.want {
				t.Errorf("expected %q, got %v", tt.want, kv[tt.key])
			}
		})
	}
}

func TestParseArgsToMapEmpty(t *testing.T) {
	if kv := parseArgsToMap([]string{"positional", "-short"}); kv != nil {
		t.Errorf("expected nil map, got %v", kv)
	}
}
