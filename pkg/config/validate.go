package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/cloudsift/cloudsift/pkg/telemetry/logging"
)

// Validate checks the configuration for values the scanner cannot run
// with. It reports the first problem found.
func Validate(cfg *Config) error {
	if cfg.Rules.Path == "" {
		return fmt.Errorf("rules.path is required")
	}
	if cfg.Inventory.Path == "" {
		return fmt.Errorf("inventory.path is required")
	}

	switch cfg.Storage.Backend {
	case StorageSQLite:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	if cfg.Scanner.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Scanner.Schedule); err != nil {
			return fmt.Errorf("invalid scanner.schedule %q: %w", cfg.Scanner.Schedule, err)
		}
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	switch logging.Format(cfg.Logging.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("unknown logging.format %q", cfg.Logging.Format)
	}

	return nil
}
