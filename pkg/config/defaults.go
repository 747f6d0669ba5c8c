package config

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Rules.Path == "" {
		cfg.Rules.Path = "rules.yaml"
	}
	if cfg.Inventory.Path == "" {
		cfg.Inventory.Path = "inventory.yaml"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageSQLite
	}
	if cfg.Storage.Backend == StorageSQLite && cfg.Storage.Path == "" {
		cfg.Storage.Path = "cloudsift.db"
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = ":9090"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "cloudsift"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
