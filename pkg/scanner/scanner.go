package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cloudsift/cloudsift/pkg/audit"
	"github.com/cloudsift/cloudsift/pkg/storage"
	"github.com/cloudsift/cloudsift/pkg/telemetry/metrics"
)

// Scanner runs compliance scans: inventory in, violations out.
type Scanner struct {
	engine    *audit.Engine
	inventory InventorySource
	store     storage.Store
	metrics   *metrics.ScannerMetrics
	logger    *slog.Logger
}

// New creates a scanner. metrics may be nil when no endpoint is
// configured.
func New(engine *audit.Engine, inventory InventorySource, store storage.Store, m *metrics.ScannerMetrics, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		engine:    engine,
		inventory: inventory,
		store:     store,
		metrics:   m,
		logger:    logger,
	}
}

// Run executes one full scan and persists its results. The returned
// record summarizes the scan; it is also saved in the store together
// with every violation found.
func (s *Scanner) Run(ctx context.Context) (storage.ScanRecord, error) {
	scan := storage.ScanRecord{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	s.logger.Info("scan started", "scan_id", scan.ID)

	entries, err := s.inventory.Resources(ctx)
	if err != nil {
		s.observeScan("error", scan)
		return scan, fmt.Errorf("loading inventory: %w", err)
	}

	var violations []audit.Violation
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			s.observeScan("cancelled", scan)
			return scan, err
		}
		scan.Resources++

		for _, ac := range entry.AccessControls {
			scan.Entries++

			seq, err := s.engine.FindViolations(ctx, entry.Resource, ac, false)
			if err != nil {
				s.observeScan("error", scan)
				return scan, fmt.Errorf("evaluating %s: %w", entry.Resource.Identity, err)
			}
			for v := range seq {
				violations = append(violations, v)
				if s.metrics != nil {
					s.metrics.ObserveViolation(v.RuleName)
				}
				s.logger.Debug("violation found",
					"scan_id", scan.ID,
					"rule_name", v.RuleName,
					"rule_index", v.RuleIndex,
					"dataset_id", v.DatasetID,
					"role", v.Role,
				)
			}
		}
	}

	scan.CompletedAt = time.Now().UTC()
	scan.Violations = len(violations)

	if err := s.store.SaveScan(ctx, scan, violations); err != nil {
		s.observeScan("error", scan)
		return scan, fmt.Errorf("persisting scan %q: %w", scan.ID, err)
	}

	s.observeScan("success", scan)
	s.logger.Info("scan complete",
		"scan_id", scan.ID,
		"resources", scan.Resources,
		"entries", scan.Entries,
		"violations", scan.Violations,
		"duration", time.Since(scan.StartedAt),
	)
	return scan, nil
}

func (s *Scanner) observeScan(outcome string, scan storage.ScanRecord) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveScan(outcome, time.Since(scan.StartedAt), scan.Resources)
	s.metrics.SetRulesLoaded(s.engine.RuleCount())
}
