// Package config assembles runtime configuration from an optional YAML file,
// a .env file and LEDGERFLOW_-prefixed environment variables. Environment
// values win over the file; everything has a usable default.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the tool.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the encoder: console or json.
	LogFormat string `yaml:"log_format"`
	// ExportDSN, when set, enables the Postgres snapshot export.
	ExportDSN string `yaml:"export_dsn"`
}

// Default returns the zero-configuration defaults.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, .env and the environment apply. A missing .env is fine; a
// named-but-unreadable YAML file is an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("LEDGERFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LEDGERFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("LEDGERFLOW_EXPORT_DSN"); v != "" {
		cfg.ExportDSN = v
	}
	return cfg, nil
}
