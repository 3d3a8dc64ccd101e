// Package config loads the keyplayer server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendAuto    = "auto"
	BackendLog     = "log"
	BackendWindows = "windows"
	BackendNVDA    = "nvda"
)

type Config struct {
	// Listen is the control API address.
	Listen string `yaml:"listen"`
	// AllowedOrigin is the only origin the control API answers cross-origin requests from.
	AllowedOrigin string `yaml:"allowed_origin"`
	// Backend selects how key events are delivered.
	Backend string `yaml:"backend"`
	// KeyMapFile optionally replaces the built-in key mapping.
	KeyMapFile string `yaml:"keymap_file"`
	LogLevel   string `yaml:"log_level"`
	NVDA       NVDA   `yaml:"nvda"`
}

// NVDA configures the NVDA Remote relay backend.
type NVDA struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Channel     string `yaml:"channel"`
	ConnType    string `yaml:"connection_type"`
	Fingerprint string `yaml:"fingerprint"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:        "0.0.0.0:8000",
		AllowedOrigin: "http://localhost:5173",
		Backend:       BackendAuto,
		LogLevel:      "info",
		NVDA: NVDA{
			Host:     "nvdaremote.com",
			Port:     "6837",
			ConnType: "master",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields that have a fixed set of values.
func (c Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	switch c.Backend {
	case BackendAuto, BackendLog, BackendWindows:
	case BackendNVDA:
		if c.NVDA.Host == "" || c.NVDA.Channel == "" {
			errs = append(errs, errors.New("nvda backend needs nvda.host and nvda.channel"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("bad log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
