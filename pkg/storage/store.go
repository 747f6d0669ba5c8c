package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cloudsift/cloudsift/pkg/audit"
)

// ScanRecord summarizes one completed scan.
type ScanRecord struct {
	// ID is the scan's UUID, assigned by the scanner.
	ID string

	StartedAt   time.Time
	CompletedAt time.Time

	// Resources is the number of inventory resources walked.
	Resources int

	// Entries is the number of access-control entries evaluated.
	Entries int

	// Violations is the number of violations found.
	Violations int
}

// Store persists completed scans and their violations.
type Store interface {
	// SaveScan records a completed scan together with every violation
	// it found.
	SaveScan(ctx context.Context, scan ScanRecord, violations []audit.Violation) error

	// ListScans returns all recorded scans, most recent first.
	ListScans(ctx context.Context) ([]ScanRecord, error)

	// ListViolations returns the violations found by the given scan.
	ListViolations(ctx context.Context, scanID string) ([]audit.Violation, error)

	// Close releases the store's resources.
	Close() error
}

// MemoryStore keeps scan results in process memory. Intended for tests
// and one-shot scans that do not need durable history.
type MemoryStore struct {
	mu         sync.RWMutex
	scans      []ScanRecord
	violations map[string][]audit.Violation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		violations: make(map[string][]audit.Violation),
	}
}

// SaveScan implements Store.
func (s *MemoryStore) SaveScan(ctx context.Context, scan ScanRecord, violations []audit.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.violations[scan.ID]; exists {
		return fmt.Errorf("scan %q already recorded", scan.ID)
	}

	s.scans = append(s.scans, scan)
	s.violations[scan.ID] = append([]audit.Violation(nil), violations...)
	return nil
}

// ListScans implements Store.
func (s *MemoryStore) ListScans(ctx context.Context) ([]ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]ScanRecord(nil), s.scans...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// ListViolations implements Store.
func (s *MemoryStore) ListViolations(ctx context.Context, scanID string) ([]audit.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs, ok := s.violations[scanID]
	if !ok {
		return nil, fmt.Errorf("unknown scan %q", scanID)
	}
	return append([]audit.Violation(nil), vs...), nil
}

// Close implements Store. It is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
