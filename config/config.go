// Package config loads the engine's runtime settings from TOML.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config captures the runtime settings for the exchange core.
type Config struct {
	DataDir          string  `toml:"data_dir"`
	InboxSize        int     `toml:"inbox_size"`
	BatchByteCeiling int     `toml:"batch_byte_ceiling"`
	Logging          Logging `toml:"logging"`
}

// Logging describes the structured log output.
type Logging struct {
	Env        string `toml:"env"`
	FilePath   string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		DataDir:          "./data",
		InboxSize:        1024,
		BatchByteCeiling: 64 << 20,
	}
}

// Load reads the TOML configuration from disk and validates the result. An
// empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.InboxSize == 0 {
		cfg.InboxSize = 1024
	}
	if cfg.BatchByteCeiling == 0 {
		cfg.BatchByteCeiling = 64 << 20
	}
}

func (cfg *Config) validate() error {
	if cfg.InboxSize < 0 {
		return fmt.Errorf("config: inbox_size must not be negative")
	}
	if cfg.BatchByteCeiling < 0 {
		return fmt.Errorf("config: batch_byte_ceiling must not be negative")
	}
	return nil
}
