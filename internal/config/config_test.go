package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tally.DefaultHeadsAmount != 15 {
		t.Errorf("DefaultHeadsAmount = %d, want 15", cfg.Tally.DefaultHeadsAmount)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Store.Backend)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
store:
  backend: remote
  remote_url: "https://tally.example.com"
  remote_timeout: 5s
tally:
  default_heads_amount: 12
  acceptable_difference_threshold: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendRemote || cfg.Store.RemoteURL != "https://tally.example.com" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.RemoteTimeout != 5*time.Second {
		t.Errorf("RemoteTimeout = %v, want 5s", cfg.Store.RemoteTimeout)
	}
	if cfg.Tally.DefaultHeadsAmount != 12 || cfg.Tally.AcceptableDifferenceThreshold != 2 {
		t.Errorf("Tally = %+v", cfg.Tally)
	}
	// Untouched sections keep defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
tally:
  default_heads_amount: 12
`)
	t.Setenv("TALLY_DEFAULT_HEADS_AMOUNT", "20")
	t.Setenv("DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tally.DefaultHeadsAmount != 20 {
		t.Errorf("DefaultHeadsAmount = %d, want 20", cfg.Tally.DefaultHeadsAmount)
	}
	if cfg.Store.DBPath != "/tmp/override.db" {
		t.Errorf("DBPath = %q", cfg.Store.DBPath)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"bad yaml", "tally: [", nil},
		{"unknown backend", "store:\n  backend: mongo\n", nil},
		{"remote without url", "store:\n  backend: remote\n", nil},
		{"negative heads", "tally:\n  default_heads_amount: -1\n", nil},
		{"auth required without secret", "auth:\n  required: true\n", nil},
		{"bad int env", "", map[string]string{"PORT": "eighty"}},
		{"bad bool env", "", map[string]string{"TALLY_AUTH_REQUIRED": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
