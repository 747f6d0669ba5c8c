package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Scheduler runs scans on a cron schedule. Runs that would overlap an
// in-flight scan are skipped.
type Scheduler struct {
	scanner  *Scanner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	scanning atomic.Bool
}

// NewScheduler creates a scheduler for the given cron expression
// (standard five-field syntax).
func NewScheduler(scanner *Scanner, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scanner:  scanner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled scanning. An empty schedule is an error;
// callers wanting a single scan should call Scanner.Run directly.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.schedule == "" {
		return fmt.Errorf("empty scan schedule")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid scan schedule %q: %w", s.schedule, err)
	}

	// A fresh cron per start keeps restart from accumulating jobs.
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runScheduled(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering scan job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scan scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for a running cron dispatch to
// finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("scan scheduler stopped")
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if !s.scanning.CompareAndSwap(false, true) {
		s.logger.Warn("previous scan still running, skipping this schedule tick")
		return
	}
	defer s.scanning.Store(false)

	if _, err := s.scanner.Run(ctx); err != nil {
		s.logger.Error("scheduled scan failed", "error", err)
	}
}
