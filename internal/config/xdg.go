// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "wordmonster"

// Environment overrides, usually set through a .env file.
const (
	EnvDBPath    = "WORDMONSTER_DB"
	EnvWordsPath = "WORDMONSTER_WORDS"
	EnvLogLevel  = "LOG_LEVEL"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultWordListPath returns the word list path, honoring WORDMONSTER_WORDS.
func DefaultWordListPath() string {
	if v := os.Getenv(EnvWordsPath); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName, "words.json")
}

// DefaultDBPath returns the SQLite database path, honoring WORDMONSTER_DB.
func DefaultDBPath() string {
	if v := os.Getenv(EnvDBPath); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultLogPath returns the log file used while the full-screen UI runs.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".log")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
