package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file is path if non-empty, then $TOMATO_CONFIG, then
// <config dir>/tomato/config.yaml. A missing file is an error only when it
// was named explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("TOMATO_CONFIG")
	}
	explicitPath := path != ""
	if !explicitPath {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("config: locate config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if err := cfg.fillPaths(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) fillPaths() error {
	if c.Storage.Path != "" && c.Log.File != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("locate config dir: %w", err)
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(dir, "tomato.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "tomato.log")
	}
	return nil
}
