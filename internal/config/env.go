package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by the shell.
const EnvPrefix = "PULSELOGIC"

// Env holds process configuration read from PULSELOGIC_* variables.
type Env struct {
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool          `envconfig:"LOG_DEV" default:"false"`
	UpdateRepo     string        `envconfig:"UPDATE_REPO" default:"pulselogic/pulselogic-desktop"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	HTTPRetries    int           `envconfig:"HTTP_RETRIES" default:"3"`
	HTTPMaxBodyMiB int64         `envconfig:"HTTP_MAX_BODY_MIB" default:"16"`
	ShellAllow     []string      `envconfig:"SHELL_ALLOW"`
	DataDir        string        `envconfig:"DATA_DIR"`
}

// Load loads configuration from environment variables.
func Load() (*Env, error) {
	var cfg Env
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Env {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Env {
	cfg := &Env{
		LogLevel:       "info",
		UpdateRepo:     "pulselogic/pulselogic-desktop",
		HTTPTimeout:    30 * time.Second,
		HTTPRetries:    3,
		HTTPMaxBodyMiB: 16,
	}
	cfg.normalize()
	return cfg
}

// SettingsPath returns the location of the persisted settings file.
func (e *Env) SettingsPath() string {
	return filepath.Join(e.DataDir, "settings.json")
}

// MaxBodyBytes returns the response body cap for network fetches.
func (e *Env) MaxBodyBytes() int64 {
	return e.HTTPMaxBodyMiB << 20
}

func (e *Env) normalize() {
	e.DataDir = strings.TrimSpace(e.DataDir)
	if e.DataDir == "" {
		e.DataDir = DefaultDataDir()
	}
	if e.HTTPMaxBodyMiB <= 0 {
		e.HTTPMaxBodyMiB = 16
	}

	allow := make([]string, 0, len(e.ShellAllow))
	for _, name := range e.ShellAllow {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			allow = append(allow, trimmed)
		}
	}
	e.ShellAllow = allow
}
