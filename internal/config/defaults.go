package config

import (
	"os"
	"path/filepath"

	"pulselogic/internal/domain"
)

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	MinWindowWidth      = 800
	MinWindowHeight     = 600
)

// DefaultSettings returns baseline user state for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		WindowWidth:  defaultWindowWidth,
		WindowHeight: defaultWindowHeight,
	}
}

// NormalizeSettings clamps window geometry to usable bounds.
func NormalizeSettings(settings domain.Settings) domain.Settings {
	if settings.WindowWidth < MinWindowWidth {
		settings.WindowWidth = defaultWindowWidth
	}
	if settings.WindowHeight < MinWindowHeight {
		settings.WindowHeight = defaultWindowHeight
	}
	return settings
}

// DefaultDataDir returns the per-user directory for persisted state.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".pulselogic")
}
