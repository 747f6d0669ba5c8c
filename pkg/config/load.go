package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at path, applies defaults and
// SIFT_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides overrides config fields from SIFT_SECTION_FIELD
// environment variables. Environment always wins over the file.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("SIFT_RULES_PATH", &cfg.Rules.Path)
	setBool("SIFT_RULES_WATCH", &cfg.Rules.Watch)
	setString("SIFT_INVENTORY_PATH", &cfg.Inventory.Path)
	setString("SIFT_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("SIFT_STORAGE_PATH", &cfg.Storage.Path)
	setString("SIFT_SCANNER_SCHEDULE", &cfg.Scanner.Schedule)
	setBool("SIFT_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("SIFT_METRICS_LISTEN_ADDRESS", &cfg.Metrics.ListenAddress)
	setString("SIFT_METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	setString("SIFT_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("SIFT_LOGGING_FORMAT", &cfg.Logging.Format)
}
