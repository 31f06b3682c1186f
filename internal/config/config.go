// Package config provides configuration management for the Byflash Drive CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the persisted client settings. The bearer token and email
// survive restarts so the user stays logged in; the display style is the
// only view preference that persists. Folder passwords are never written
// here, they live in memory for one session only.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\byflash\apiconfig
//   - Unix: ~/.config/byflash/apiconfig
//
// INI format:
//
//	[byflash]
//	api_url = https://drive.example.com/api.php
//	api_token = <bearer-token>
//	email = user@example.com
//
//	[byflash.display]
//	view_style = grid
//	download_dir = /home/user/Downloads
type Config struct {
	// Connection settings
	APIURL   string `ini:"api_url"`
	APIToken string `ini:"api_token"`
	Email    string `ini:"email"`

	// Display settings
	ViewStyle   string `ini:"view_style"`
	DownloadDir string `ini:"download_dir"`
}

// Validation errors
var (
	ErrMissingAPIURL = errors.New("api_url is required; set it with 'byflash login --url'")
	ErrNotLoggedIn   = errors.New("not logged in; run 'byflash login'")
)

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "byflash")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "byflash")
	}

	return filepath.Join(configDir, "apiconfig"), nil
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ViewStyle: "grid",
	}
}

// Load reads configuration from an INI file. A missing file returns the
// defaults with no error; an unreadable file is an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	section := iniFile.Section("byflash")
	cfg.APIURL = section.Key("api_url").String()
	cfg.APIToken = section.Key("api_token").String()
	cfg.Email = section.Key("email").String()

	display := iniFile.Section("byflash.display")
	cfg.ViewStyle = display.Key("view_style").MustString("grid")
	cfg.DownloadDir = display.Key("download_dir").String()

	return cfg, nil
}

// Save writes configuration to an INI file with restrictive permissions,
// creating parent directories as needed. The write is atomic (tmp + rename)
// so a crash never leaves a half-written config holding the token.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	section, err := iniFile.NewSection("byflash")
	if err != nil {
		return fmt.Errorf("failed to create byflash section: %w", err)
	}
	section.Key("api_url").SetValue(cfg.APIURL)
	section.Key("api_token").SetValue(cfg.APIToken)
	section.Key("email").SetValue(cfg.Email)

	display, err := iniFile.NewSection("byflash.display")
	if err != nil {
		return fmt.Errorf("failed to create display section: %w", err)
	}
	display.Key("view_style").SetValue(cfg.ViewStyle)
	display.Key("download_dir").SetValue(cfg.DownloadDir)

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// The token is sensitive, keep the file user-only.
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// ClearSession drops the stored credentials while preserving the API URL
// and display settings. Used on logout and on session expiry.
func (cfg *Config) ClearSession() {
	cfg.APIToken = ""
	cfg.Email = ""
}

// Validate checks that the config is usable for API calls.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return ErrMissingAPIURL
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// IsLoggedIn reports whether a token is stored.
func (cfg *Config) IsLoggedIn() bool {
	return strings.TrimSpace(cfg.APIToken) != ""
}
