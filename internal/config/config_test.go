package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so no real global config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "assets/cache/", cfg.CacheDir)
	assert.Equal(t, ".orig", cfg.BackupSuffix)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_GlobalConfig(t *testing.T) {
	home := isolate(t)
	writeJSON(t, filepath.Join(home, ".animpub", "config.json"), `{"cache_dir": "static/", "format": "json"}`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "static/", cfg.CacheDir)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_LocalOverridesGlobal(t *testing.T) {
	home := isolate(t)
	writeJSON(t, filepath.Join(home, ".animpub", "config.json"), `{"cache_dir": "static/", "format": "json"}`)
	local := filepath.Join(t.TempDir(), "animpub.json")
	writeJSON(t, local, `{"cache_dir": "cdn/cache/"}`)

	cfg, err := Load(local)
	require.NoError(t, err)

	assert.Equal(t, "cdn/cache/", cfg.CacheDir)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)
	local := filepath.Join(t.TempDir(), "animpub.json")
	writeJSON(t, local, `{"cache_dir": "cdn/cache/", "log_level": "warn"}`)
	t.Setenv("ANIMPUB_CACHE_DIR", "env/cache/")
	t.Setenv("ANIMPUB_BACKUP_SUFFIX", ".bak")

	cfg, err := Load(local)
	require.NoError(t, err)

	assert.Equal(t, "env/cache/", cfg.CacheDir)
	assert.Equal(t, ".bak", cfg.BackupSuffix)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	local := filepath.Join(t.TempDir(), "animpub.json")
	writeJSON(t, local, `{"cache_dir": `)

	_, err := Load(local)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load local config")
}

func TestLoad_Validation(t *testing.T) {
	tests := map[string]string{
		"unknown format":      `{"format": "xml"}`,
		"unknown log level":   `{"log_level": "trace"}`,
		"empty cache dir":     `{"cache_dir": ""}`,
		"suffix without dot":  `{"backup_suffix": "orig"}`,
		"empty backup suffix": `{"backup_suffix": ""}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			local := filepath.Join(t.TempDir(), "animpub.json")
			writeJSON(t, local, content)

			_, err := Load(local)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoad_ExpandsDatabaseHome(t *testing.T) {
	home := isolate(t)
	t.Setenv("ANIMPUB_DATABASE", "~/ledger.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "ledger.db"), cfg.Database)
}

func TestConfiguration_Level(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for name, want := range tests {
		cfg := &Configuration{LogLevel: name}
		assert.Equal(t, want, cfg.Level(), name)
	}
}
