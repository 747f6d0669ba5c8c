package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudsift/cloudsift/pkg/audit"
	"github.com/cloudsift/cloudsift/pkg/config"
	"github.com/cloudsift/cloudsift/pkg/scanner"
	"github.com/cloudsift/cloudsift/pkg/storage"
	"github.com/cloudsift/cloudsift/pkg/telemetry/logging"
	"github.com/cloudsift/cloudsift/pkg/telemetry/metrics"
)

var scanFlags struct {
	rulesPath     string
	inventoryPath string
	schedule      string
	watch         bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan access controls against the policy rules",
	Long: `Run a compliance scan: evaluate every access-control entry in the
inventory against the rule book and persist the violations found.

Without a schedule the scan runs once and exits non-zero when it
cannot complete. With a schedule the scanner stays resident and runs
on every cron tick; --watch additionally rebuilds the rule book when
the rules file changes between runs.

Examples:
  # One-shot scan
  cloudsift scan

  # Nightly scan with rules hot-reload
  cloudsift scan --schedule "0 3 * * *" --watch

  # Override the inventory dump
  cloudsift scan --inventory /var/lib/cloudsift/inventory.yaml`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFlags.rulesPath, "rules", "", "override rules file path")
	scanCmd.Flags().StringVar(&scanFlags.inventoryPath, "inventory", "", "override inventory file path")
	scanCmd.Flags().StringVar(&scanFlags.schedule, "schedule", "", "cron schedule for periodic scans")
	scanCmd.Flags().BoolVar(&scanFlags.watch, "watch", false, "rebuild the rule book when the rules file changes")
}

// loadConfig loads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if scanFlags.rulesPath != "" {
		cfg.Rules.Path = scanFlags.rulesPath
	}
	if scanFlags.inventoryPath != "" {
		cfg.Inventory.Path = scanFlags.inventoryPath
	}
	if scanFlags.schedule != "" {
		cfg.Scanner.Schedule = scanFlags.schedule
	}
	if scanFlags.watch {
		cfg.Rules.Watch = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var m *metrics.ScannerMetrics
	if cfg.Metrics.Enabled {
		m = metrics.NewScannerMetrics(cfg.Metrics.Namespace)
		go serveMetrics(cfg.Metrics.ListenAddress, m, logger)
	}

	engine := audit.NewEngine(audit.FileRuleSource{Path: cfg.Rules.Path}, logger)
	inventory := scanner.FileInventory{Path: cfg.Inventory.Path}
	s := scanner.New(engine, inventory, store, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scanner.Schedule == "" {
		scan, err := s.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("scan %s: %d resources, %d entries, %d violations\n",
			scan.ID, scan.Resources, scan.Entries, scan.Violations)
		return nil
	}

	return runScheduled(ctx, cfg, engine, s, logger)
}

// runScheduled keeps the scanner resident: scans fire on the cron
// schedule, and with rules.watch enabled the rule book rebuilds when
// the rules file changes.
func runScheduled(ctx context.Context, cfg *config.Config, engine *audit.Engine, s *scanner.Scanner, logger *slog.Logger) error {
	sched := scanner.NewScheduler(s, cfg.Scanner.Schedule, logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.Rules.Watch {
		watcher, err := audit.NewRuleWatcher(cfg.Rules.Path, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Watch(ctx, func() error {
				return engine.BuildRuleBook(ctx)
			}); err != nil {
				logger.Error("rules watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		return storage.NewSQLiteStore(cfg.Storage.Path)
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func serveMetrics(addr string, m *metrics.ScannerMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	logger.Info("metrics endpoint listening", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
