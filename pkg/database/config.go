package database

import (
	"github.com/juju/errors"
	"gopkg.in/ini.v1"

	"tupledb/pkg/memory"
)

// Config carries the engine settings read at startup.
type Config struct {
	// DataDir is where table files live when not given absolute paths.
	DataDir string

	// CacheCapacity is the clean-page cache size, in pages.
	CacheCapacity int64

	// LogLevel names the logging level (debug, info, warn, error).
	LogLevel string
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		DataDir:       ".",
		CacheCapacity: memory.DefaultCacheCapacity,
		LogLevel:      "info",
	}
}

// LoadConfig reads engine settings from an ini file's [storage] section.
// Missing keys keep their defaults.
//
//	[storage]
//	data_dir       = /var/lib/tupledb
//	cache_capacity = 4096
//	log_level      = debug
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	file, err := ini.Load(path)
	if err != nil {
		return cfg, errors.Annotatef(err, "loading config %s", path)
	}

	section := file.Section("storage")
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.CacheCapacity = section.Key("cache_capacity").MustInt64(cfg.CacheCapacity)
	cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)

	if cfg.CacheCapacity <= 0 {
		return cfg, errors.Errorf("cache_capacity must be positive, got %d", cfg.CacheCapacity)
	}

	return cfg, nil
}
