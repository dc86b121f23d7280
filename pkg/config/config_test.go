package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hunlaw.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `cache_path: /tmp/hunlaw.db
abbreviations: tables
jobs: 4
max_depth: 200
format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		CachePath:     "/tmp/hunlaw.db",
		Abbreviations: "tables",
		Jobs:          4,
		MaxDepth:      200,
		LogLevel:      "info",
		Format:        FormatJSON,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "jobs: 4\nformat: json\n")
	t.Setenv("HUNLAW_JOBS", "8")
	t.Setenv("HUNLAW_FORMAT", "YAML")
	t.Setenv("HUNLAW_DEBUG", "1")
	t.Setenv("HUNLAW_CACHE", "'/var/cache/hunlaw.db'")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Jobs != 8 {
		t.Errorf("Jobs = %d, want 8", cfg.Jobs)
	}
	if cfg.Format != FormatYAML {
		t.Errorf("Format = %q, want %q", cfg.Format, FormatYAML)
	}
	if !cfg.Debug || cfg.Level() != "debug" {
		t.Errorf("Debug = %v, Level() = %q, want debug", cfg.Debug, cfg.Level())
	}
	if cfg.CachePath != "/var/cache/hunlaw.db" {
		t.Errorf("CachePath = %q, want quotes trimmed", cfg.CachePath)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("HUNLAW_JOBS", "zero")
	t.Setenv("HUNLAW_MAX_DEPTH", "-1")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Jobs != 1 || cfg.MaxDepth != 0 {
		t.Errorf("invalid settings applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad yaml", "jobs: [\n"},
		{"bad format", "format: xml\n"},
		{"bad jobs", "jobs: 0\n"},
		{"negative depth", "max_depth: -3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded, want error")
	}
}

func TestAsMap(t *testing.T) {
	cfg := Default()
	m := cfg.AsMap()
	if got := m["HUNLAW_JOBS"].Value; got != 1 {
		t.Errorf("HUNLAW_JOBS = %v, want 1", got)
	}
	for k, v := range m {
		if k != v.Name {
			t.Errorf("entry %s named %s", k, v.Name)
		}
	}
}
