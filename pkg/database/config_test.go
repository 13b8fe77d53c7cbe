package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tupledb/pkg/memory"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, ".", cfg.DataDir)
	require.Equal(t, int64(memory.DefaultCacheCapacity), cfg.CacheCapacity)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[storage]
data_dir       = /var/lib/tupledb
cache_capacity = 4096
log_level      = debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/tupledb", cfg.DataDir)
	require.Equal(t, int64(4096), cfg.CacheCapacity)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigMissingKeysKeepDefaults(t *testing.T) {
	path := writeConfig(t, `
[storage]
log_level = warn
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ".", cfg.DataDir)
	require.Equal(t, int64(memory.DefaultCacheCapacity), cfg.CacheCapacity)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigRejectsBadCapacity(t *testing.T) {
	path := writeConfig(t, `
[storage]
cache_capacity = 0
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.ini"))
	require.Error(t, err)
}
