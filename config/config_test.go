package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keyplayer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Listen != "0.0.0.0:8000" || cfg.AllowedOrigin != "http://localhost:5173" || cfg.Backend != BackendAuto {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: 127.0.0.1:9000
backend: nvda
log_level: debug
nvda:
  channel: piano
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" || cfg.Backend != BackendNVDA {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.AllowedOrigin != "http://localhost:5173" {
		t.Errorf("AllowedOrigin = %q, want default kept", cfg.AllowedOrigin)
	}
	if cfg.NVDA.Host != "nvdaremote.com" || cfg.NVDA.Channel != "piano" || cfg.NVDA.Port != "6837" {
		t.Errorf("NVDA = %+v, want defaults merged with channel", cfg.NVDA)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Errorf("Level() = %v, want DEBUG", lvl)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
	if _, err := Load(writeConfig(t, "listen: [")); err == nil {
		t.Error("Load(bad yaml) error = nil")
	}
	_, err := Load(writeConfig(t, "backend: midi\nlog_level: loud\n"))
	if err == nil {
		t.Fatal("Load(bad values) error = nil")
	}
	if !strings.Contains(err.Error(), `unknown backend "midi"`) || !strings.Contains(err.Error(), "bad log level") {
		t.Errorf("Load(bad values) error = %v, want both problems reported", err)
	}
}

func TestValidateNVDANeedsChannel(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendNVDA
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want missing channel")
	}
}
