package config

// Config is the root scanner configuration.
type Config struct {
	Rules     RulesConfig     `yaml:"rules"`
	Inventory InventoryConfig `yaml:"inventory"`
	Storage   StorageConfig   `yaml:"storage"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RulesConfig locates the policy rules file.
type RulesConfig struct {
	// Path is the rules YAML file.
	Path string `yaml:"path"`

	// Watch rebuilds the rule book when the rules file changes.
	// Only meaningful for scheduled (long-running) scans.
	Watch bool `yaml:"watch"`
}

// InventoryConfig locates the resource inventory to scan.
type InventoryConfig struct {
	// Path is the inventory YAML dump of resources and their access
	// controls.
	Path string `yaml:"path"`
}

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// StorageConfig selects where scan results are persisted.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file; ignored by the memory
	// backend.
	Path string `yaml:"path"`
}

// ScannerConfig controls scan scheduling.
type ScannerConfig struct {
	// Schedule is a standard cron expression for periodic scans.
	// Empty runs a single scan and exits.
	Schedule string `yaml:"schedule"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// ListenAddress serves /metrics when enabled, e.g. ":9090".
	ListenAddress string `yaml:"listen_address"`

	// Namespace prefixes metric names.
	Namespace string `yaml:"namespace"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}
