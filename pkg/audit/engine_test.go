package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
)

// stubSource serves canned definitions and counts loads.
type stubSource struct {
	mu    sync.Mutex
	defs  []RuleDefinition
	err   error
	loads int
}

func (s *stubSource) LoadRuleDefinitions(ctx context.Context) ([]RuleDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.defs, nil
}

func (s *stubSource) set(defs []RuleDefinition, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs, s.err = defs, err
}

func (s *stubSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func projectRule(name, projectID string) RuleDefinition {
	return RuleDefinition{
		Name:     name,
		Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{projectID}}},
	}
}

func TestEngineBuildsOnFirstQuery(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{projectRule("r1", "proj-1")}}
	eng := NewEngine(src, nil)

	if eng.Built() {
		t.Fatal("engine should start unbuilt")
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
	if err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}
	if got := collect(t, seq); len(got) != 1 {
		t.Fatalf("got %d violations, want 1", len(got))
	}
	if !eng.Built() {
		t.Fatal("engine should be built after first query")
	}
	if src.loadCount() != 1 {
		t.Fatalf("load count = %d, want 1", src.loadCount())
	}

	// A second query reuses the installed book.
	if _, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false); err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}
	if src.loadCount() != 1 {
		t.Fatalf("load count after reuse = %d, want 1", src.loadCount())
	}
}

func TestEngineForceRebuild(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{projectRule("old", "proj-1")}}
	eng := NewEngine(src, nil)

	if err := eng.BuildRuleBook(context.Background()); err != nil {
		t.Fatalf("BuildRuleBook returned error: %v", err)
	}

	src.set([]RuleDefinition{projectRule("new", "proj-1")}, nil)

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, true)
	if err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}

	got := collect(t, seq)
	if len(got) != 1 || got[0].RuleName != "new" {
		t.Fatalf("got %v, want single violation from rule %q", got, "new")
	}
}

func TestEngineFailedBuildKeepsPriorBook(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{projectRule("good", "proj-1")}}
	eng := NewEngine(src, nil)

	if err := eng.BuildRuleBook(context.Background()); err != nil {
		t.Fatalf("BuildRuleBook returned error: %v", err)
	}

	src.set(nil, errors.New("rules file unreadable"))

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	if _, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, true); err == nil {
		t.Fatal("expected rebuild error")
	}

	// The prior book is still authoritative.
	seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
	if err != nil {
		t.Fatalf("FindViolations after failed rebuild returned error: %v", err)
	}
	got := collect(t, seq)
	if len(got) != 1 || got[0].RuleName != "good" {
		t.Fatalf("got %v, want violation from prior book", got)
	}
}

func TestEngineInvalidDefinitionLeavesEngineUnbuilt(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{{
		Name:     "broken",
		Resource: []ResourceScope{{Type: "project", ResourceIDs: nil}},
	}}}
	eng := NewEngine(src, nil)

	if err := eng.BuildRuleBook(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
	if eng.Built() {
		t.Fatal("engine should remain unbuilt after failed build")
	}
}

func TestEngineAddRules(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{projectRule("base", "proj-1")}}
	eng := NewEngine(src, nil)

	// No-op while unbuilt.
	if err := eng.AddRules([]RuleDefinition{projectRule("extra", "proj-1")}); err != nil {
		t.Fatalf("AddRules on unbuilt engine returned error: %v", err)
	}
	if eng.Built() {
		t.Fatal("AddRules must not build the engine")
	}

	if err := eng.BuildRuleBook(context.Background()); err != nil {
		t.Fatalf("BuildRuleBook returned error: %v", err)
	}
	if err := eng.AddRules([]RuleDefinition{projectRule("extra", "proj-1")}); err != nil {
		t.Fatalf("AddRules returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
	if err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}
	if got := collect(t, seq); len(got) != 2 {
		t.Fatalf("got %d violations, want 2", len(got))
	}
}

// TestEngineRebuildDuringEnumeration verifies the copy-on-rebuild
// discipline: an enumeration started before a rebuild keeps reading
// the old book and is not corrupted or interrupted by the swap.
func TestEngineRebuildDuringEnumeration(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{
		projectRule("old-a", "proj-1"),
		projectRule("old-b", "proj-1"),
	}}
	eng := NewEngine(src, nil)
	if err := eng.BuildRuleBook(context.Background()); err != nil {
		t.Fatalf("BuildRuleBook returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
	if err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}

	var got []Violation
	rebuilt := false
	for v := range seq {
		got = append(got, v)
		if !rebuilt {
			// Swap in a completely different book mid-enumeration.
			src.set([]RuleDefinition{projectRule("new", "proj-1")}, nil)
			if err := eng.BuildRuleBook(context.Background()); err != nil {
				t.Fatalf("concurrent rebuild returned error: %v", err)
			}
			rebuilt = true
		}
	}

	if len(got) != 2 || got[0].RuleName != "old-a" || got[1].RuleName != "old-b" {
		t.Fatalf("enumeration disturbed by rebuild: %v", got)
	}

	// New queries see the new book.
	seq, err = eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
	if err != nil {
		t.Fatalf("FindViolations returned error: %v", err)
	}
	fresh := collect(t, seq)
	if len(fresh) != 1 || fresh[0].RuleName != "new" {
		t.Fatalf("post-rebuild enumeration = %v, want rule %q", fresh, "new")
	}
}

func TestEngineConcurrentQueriesAndRebuilds(t *testing.T) {
	src := &stubSource{defs: []RuleDefinition{projectRule("r", "proj-1")}}
	eng := NewEngine(src, nil)
	if err := eng.BuildRuleBook(context.Background()); err != nil {
		t.Fatalf("BuildRuleBook returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				seq, err := eng.FindViolations(context.Background(), projectResource("proj-1"), ac, false)
				if err != nil {
					t.Errorf("FindViolations returned error: %v", err)
					return
				}
				n := 0
				for range seq {
					n++
				}
				if n != 1 {
					t.Errorf("got %d violations, want 1", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := eng.BuildRuleBook(context.Background()); err != nil {
					t.Errorf("rebuild returned error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
