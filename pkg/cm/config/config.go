// Package config provides configuration loading for cm. Settings come
// from a YAML config file under the XDG config directory, overridable by
// CM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Defaults applied when the config file or a key is absent.
const (
	// DefaultJPEGQuality is the quality used when re-encoding JPEG sources.
	DefaultJPEGQuality = 90

	// DefaultRetentionDays is how long manifest history entries are kept.
	DefaultRetentionDays = 90
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	// CropToContent controls whether images are cropped to their visible
	// content before being written to the output tree.
	CropToContent bool `mapstructure:"crop_to_content"`

	// JPEGQuality is the re-encode quality for JPEG sources (1-100).
	JPEGQuality int `mapstructure:"jpeg_quality"`

	// Workers is the batch worker count. Zero means one per CPU.
	Workers int `mapstructure:"workers"`

	// Exclude contains glob patterns for paths skipped during enumeration.
	Exclude []string `mapstructure:"exclude"`

	Manifest struct {
		Enabled       bool `mapstructure:"enabled"`
		RetentionDays int  `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/cm/config.yaml
//   - $HOME/.config/cm/config.yaml
//
// Environment variables are prefixed with CM_ (e.g., CM_JPEG_QUALITY).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "cm"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "cm"))

	v.SetEnvPrefix("CM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers default values on the given viper instance.
// The CLI shares these with Load via its own viper singleton.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("crop_to_content", true)
	v.SetDefault("jpeg_quality", DefaultJPEGQuality)
	v.SetDefault("workers", 0)
	v.SetDefault("exclude", []string{})
	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"planner":   "info",
		"processor": "info",
		"watcher":   "warn",
		"rules":     "info",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "cm"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "cm"), nil
}

// ManifestDir returns the directory holding batch history entries.
func ManifestDir() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ".manifest"), nil
}

// StateDir returns $XDG_STATE_HOME/cm/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "cm")
}

// CacheDir returns $XDG_CACHE_HOME/cm/ for the fingerprint cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "cm")
}

// DefaultFingerprintPath returns the default fingerprint cache path.
func DefaultFingerprintPath() string {
	return filepath.Join(CacheDir(), "fingerprints")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "cm.log")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a commented default config file if none exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# cm configuration

# Crop images to their visible content before writing outputs
crop_to_content: true

# JPEG re-encode quality (1-100)
jpeg_quality: %d

# Batch worker count (0 = one per CPU)
workers: 0

# Glob patterns excluded during enumeration
exclude: []

# Batch run history
manifest:
  enabled: true
  retention_days: %d

# Logging
logging:
  level: info
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
`, DefaultJPEGQuality, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
