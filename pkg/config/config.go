// Package config loads the tunables for a densemap/sharded deployment
// from a TOML file: initial capacity, max load factor, partition count,
// and logging destination/level.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the table and logging tunables read from a TOML file.
type Config struct {
	Table   TableConfig   `toml:"table"`
	Logging LoggingConfig `toml:"logging"`
}

// TableConfig mirrors densemap/sharded's construction parameters.
type TableConfig struct {
	InitialCapacity int     `toml:"initial_capacity"`
	MaxLoadFactor   float64 `toml:"max_load_factor"`
	Partitions      int     `toml:"partitions"`
}

// LoggingConfig mirrors logging.Options, with Level as a level name;
// logging.Options.Compress has no field here.
type LoggingConfig struct {
	FilePath   string `toml:"file_path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	AlsoStderr bool   `toml:"also_stderr"`
}

// Default returns the configuration a Map built with no file would use.
func Default() Config {
	return Config{
		Table: TableConfig{
			InitialCapacity: 16,
			MaxLoadFactor:   0.75,
			Partitions:      64,
		},
		Logging: LoggingConfig{
			Level:      "info",
			AlsoStderr: true,
		},
	}
}

// Load decodes a TOML file at path into a Config, starting from Default
// so an omitted field keeps its default rather than zeroing out.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would produce a degenerate table.
func (c Config) Validate() error {
	if c.Table.InitialCapacity <= 0 {
		return fmt.Errorf("config: table.initial_capacity must be positive, got %d", c.Table.InitialCapacity)
	}
	if c.Table.MaxLoadFactor <= 0 || c.Table.MaxLoadFactor >= 1 {
		return fmt.Errorf("config: table.max_load_factor must be in (0, 1), got %f", c.Table.MaxLoadFactor)
	}
	if c.Table.Partitions <= 0 {
		return fmt.Errorf("config: table.partitions must be positive, got %d", c.Table.Partitions)
	}
	return nil
}
