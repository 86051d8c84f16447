package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName     = "outletsync"
	configFile  = "config.yaml"
	catalogFile = "catalog.yaml"
)

// Config is the application configuration file. It carries everything the
// gateways and the engine need that is not device state: endpoints, the
// access token, timeouts, and verification tuning.
type Config struct {
	// APIEndpoint is the regional HTTP API base URL
	APIEndpoint string `yaml:"api_endpoint"`

	// DispatchEndpoint is the WebSocket dispatch URL. Empty means commands
	// go over HTTP instead.
	DispatchEndpoint string `yaml:"dispatch_endpoint,omitempty"`

	// AccessToken is the OAuth2 token, acquired out-of-band
	AccessToken string `yaml:"access_token,omitempty"`

	// RequestTimeout is the per-request HTTP timeout in seconds
	RequestTimeout int `yaml:"request_timeout,omitempty"`

	// Verification tunes the convergence read-back behavior
	Verification VerificationConfig `yaml:"verification,omitempty"`

	// LogLevel overrides OUTLETSYNC_LOG_LEVEL when set
	LogLevel string `yaml:"log_level,omitempty"`
}

// VerificationConfig mirrors the engine's verification options in file form.
type VerificationConfig struct {
	MaxRetries      int `yaml:"max_retries,omitempty"`
	InitialDelayMS  int `yaml:"initial_delay_ms,omitempty"`
	RetryIntervalMS int `yaml:"retry_interval_ms,omitempty"`
	MaxIntervalMS   int `yaml:"max_interval_ms,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		APIEndpoint:    "https://eu-api.coolkit.cc",
		RequestTimeout: 10,
		Verification: VerificationConfig{
			MaxRetries:      3,
			InitialDelayMS:  500,
			RetryIntervalMS: 1000,
			MaxIntervalMS:   5000,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// application, following platform conventions:
//   - Linux: $XDG_CONFIG_HOME/outletsync or $HOME/.config/outletsync
//   - macOS: $HOME/.config/outletsync (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\outletsync
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		// Unix-like systems (including macOS): XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// GetCatalogPath returns the full path to the device catalog cache file.
func GetCatalogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, catalogFile), nil
}

// Load reads the configuration file from the config directory. A missing
// file is not an error: defaults are returned so first runs work without a
// configure step.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the config directory. The token lives in
// this file, so it is written with user-only permissions.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
