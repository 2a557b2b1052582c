// Package config loads animpub settings from defaults, config files and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. ANIMPUB_CACHE_DIR.
const EnvPrefix = "ANIMPUB_"

// Configuration holds the animpub settings.
type Configuration struct {
	// CacheDir replaces the exporter's "images/" prefix in published scripts.
	CacheDir string `koanf:"cache_dir" validate:"required"`

	// BackupSuffix is inserted before the extension of backup copies.
	BackupSuffix string `koanf:"backup_suffix" validate:"required,startswith=."`

	// Database is the publication ledger path. Empty disables the ledger.
	Database string `koanf:"database"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	Format   string `koanf:"format" validate:"oneof=text json yaml"`
}

// Load loads configuration from global, local, and environment sources.
// Priority: Environment variables > Local config > Global config > Defaults
//
// An empty localConfigPath reads DefaultLocalPath when it exists. An
// explicit path must exist.
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	if globalPath, ok := GlobalPath(); ok {
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	localPath, required := localConfigPath, true
	if localPath == "" {
		localPath, required = DefaultLocalPath, false
	}
	if _, err := os.Stat(localPath); err == nil {
		if err := k.Load(file.Provider(localPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	} else if required {
		return nil, fmt.Errorf("config file %s: %w", localPath, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Database = expandHomePath(cfg.Database)
	return &cfg, nil
}

// GlobalPath returns ~/.animpub/config.json. ok is false when the home
// directory is unknown.
func GlobalPath() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(homeDir, ".animpub", "config.json"), true
}

// Level returns the slog level named by LogLevel.
func (c *Configuration) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// envTransform converts environment variable names to config keys.
// Example: ANIMPUB_CACHE_DIR -> cache_dir
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
