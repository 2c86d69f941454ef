package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"deskstate/internal/settings"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("DESKSTATE_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	s, err := settings.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTP.Addr == "" {
		t.Error("default http addr empty")
	}
	if s.Tools.Pactl != "pactl" {
		t.Errorf("default pactl binary = %q", s.Tools.Pactl)
	}
	if len(s.Scale.Presets) == 0 {
		t.Error("default scale presets empty")
	}
	if s.Scale.MaxTargetIndex < 1 {
		t.Errorf("default max target index = %d", s.Scale.MaxTargetIndex)
	}
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := []byte("[http]\naddr = \":9000\"\n\n[tools]\nscale = \"myscale\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("DESKSTATE_CONFIG", path)

	s, err := settings.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTP.Addr != ":9000" {
		t.Errorf("http.addr = %q, want :9000", s.HTTP.Addr)
	}
	if s.Tools.ScaleTool != "myscale" {
		t.Errorf("tools.scale = %q, want myscale", s.Tools.ScaleTool)
	}
	// Untouched keys keep defaults.
	if s.Tools.Pactl != "pactl" {
		t.Errorf("tools.pactl = %q, want default", s.Tools.Pactl)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DESKSTATE_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DESKSTATE_HTTP_ADDR", ":7777")

	s, err := settings.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTP.Addr != ":7777" {
		t.Errorf("http.addr = %q, want env override :7777", s.HTTP.Addr)
	}
}
