package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment. Empty means unset.
type EnvConfig struct {
	DBPath     string `env:"LITTERIX_DB_PATH"`
	LogLevel   string `env:"LITTERIX_LOG_LEVEL"`
	LogFile    string `env:"LITTERIX_LOG_FILE"`
	PhrasesDir string `env:"LITTERIX_PHRASES_DIR"`
}

// LoadEnv parses the LITTERIX_* environment variables.
func LoadEnv() (EnvConfig, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Apply overlays non-empty environment values onto the file config.
func (e EnvConfig) Apply(cfg *FileConfig) {
	if e.LogLevel != "" {
		cfg.Log.Level = &e.LogLevel
	}
	if e.LogFile != "" {
		cfg.Log.File = &e.LogFile
	}
	if e.PhrasesDir != "" {
		cfg.Game.PhrasesDir = &e.PhrasesDir
	}
}

// ResolveDBPath returns the database path, honoring LITTERIX_DB_PATH.
func (e EnvConfig) ResolveDBPath() string {
	if e.DBPath != "" {
		return e.DBPath
	}
	return DefaultDBPath()
}
