// Package config reads the small set of environment knobs the CLI honors.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"soloquest/internal/storage"
)

type Config struct {
	// DataDir overrides the directory the database lives in.
	DataDir string `env:"SQ_DATA_DIR"`
	// DBPath overrides the full database path; takes precedence over DataDir.
	DBPath string `env:"SQ_DB_PATH"`
	// Debug enables verbose logging.
	Debug bool `env:"SQ_DEBUG"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ResolveDBPath applies the override order: SQ_DB_PATH, then SQ_DATA_DIR,
// then the home-directory default.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	if c.DataDir != "" {
		return filepath.Join(c.DataDir, "soloquest.db"), nil
	}
	return storage.DefaultDBPath()
}
