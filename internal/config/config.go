// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SMARTSVG_SERVICE_ACCESS_TOKEN
const EnvPrefix = "SMARTSVG"

var v *viper.Viper

// DefaultPath returns the config file location, honouring SMARTSVG_CONFIG
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".smartsvg", "config.yaml"), nil
}

// InitConfig initializes the configuration system. A missing config file is
// created with defaults. Values from a .env file next to it and from
// SMARTSVG_* variables override the file.
func InitConfig(configPath string) error {
	v = viper.New()
	setDefaults()

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	// environment overrides, kept out of a freshly written file
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	dataDir := "/var/lib/smartsvg"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".smartsvg")
	}

	// Server defaults
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.blocked_ips", []string{})
	v.SetDefault("server.shutdown_timeout", "30s")

	// Manipulation service defaults
	v.SetDefault("service.base_url", "http://localhost:3000")
	v.SetDefault("service.timeout", "30s")
	v.SetDefault("service.access_token", "")

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.artifacts_dir", filepath.Join(dataDir, "artifacts"))
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.retention", "720h")

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", filepath.Join(dataDir, "smartsvg.db"))

	v.SetDefault("uploads.max_bytes", 2<<20)

	v.SetDefault("ratelimit.capacity", 30)
	v.SetDefault("ratelimit.interval", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
}

// GetString returns a config value as string
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns a config value as int
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetInt64 returns a config value as int64
func GetInt64(key string) int64 {
	if v == nil {
		return 0
	}
	return v.GetInt64(key)
}

// GetBool returns a config value as bool
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration returns a config value as time.Duration
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns a config value as a list of strings
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// Set sets a config value and saves to file
func Set(key string, value any) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetAll returns all config values as a map
func GetAll() map[string]any {
	if v == nil {
		return nil
	}
	return v.AllSettings()
}
