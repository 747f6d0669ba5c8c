package audit

import (
	"errors"
	"testing"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

func projectResource(id string) resource.Resource {
	return resource.Resource{
		Identity: resource.Identity{Type: resource.Project, ID: id},
		FullName: "organization/org-1/project/" + id + "/",
	}
}

func TestRuleBookMissingResourceIDs(t *testing.T) {
	book := NewRuleBook()
	defs := []RuleDefinition{
		{
			Name:     "valid",
			Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-1"}}},
		},
		{
			Name:     "broken",
			Resource: []ResourceScope{{Type: "project", ResourceIDs: nil}},
		},
		{
			Name:     "never reached",
			Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-2"}}},
		},
	}

	err := book.AddRules(defs)
	if err == nil {
		t.Fatal("expected error for empty resource id list")
	}

	var invalid *InvalidRuleError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want *InvalidRuleError", err)
	}
	if invalid.RuleIndex != 1 {
		t.Errorf("RuleIndex = %d, want 1", invalid.RuleIndex)
	}

	// The build aborted at the broken definition: rules before it are
	// indexed, nothing at or after it is.
	if got := book.RuleCount(); got != 1 {
		t.Errorf("RuleCount = %d, want 1", got)
	}
}

func TestRuleBookMissingResourceScope(t *testing.T) {
	book := NewRuleBook()
	err := book.AddRules([]RuleDefinition{{Name: "no scope"}})
	if err == nil {
		t.Fatal("expected error for definition without resource scope")
	}
}

func TestRuleBookScopeFanOut(t *testing.T) {
	// One definition, two scopes with two ids each: the rule is
	// registered under all four identities.
	book := NewRuleBook()
	err := book.AddRules([]RuleDefinition{{
		Name: "fan out",
		Resource: []ResourceScope{
			{Type: "project", ResourceIDs: []string{"proj-1", "proj-2"}},
			{Type: "organization", ResourceIDs: []string{"org-1", "org-2"}},
		},
	}})
	if err != nil {
		t.Fatalf("AddRules returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	for _, res := range []resource.Resource{
		resource.New("proj-1", resource.Project),
		resource.New("proj-2", resource.Project),
		resource.New("org-1", resource.Organization),
		resource.New("org-2", resource.Organization),
	} {
		got := collect(t, book.FindViolations(res, ac))
		if len(got) != 1 {
			t.Errorf("resource %v: got %d violations, want 1", res.Identity, len(got))
		}
	}
}

// TestRuleBookAncestorOrdering verifies that violations from a closer
// ancestor precede violations from a farther one, and that rules
// within one ancestor fire in definition order.
func TestRuleBookAncestorOrdering(t *testing.T) {
	book := NewRuleBook()
	err := book.AddRules([]RuleDefinition{
		{
			Name:     "org wide",
			Resource: []ResourceScope{{Type: "organization", ResourceIDs: []string{"org-1"}}},
		},
		{
			Name:     "project first",
			Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-1"}}},
		},
		{
			Name:     "project second",
			Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-1"}}},
		},
	})
	if err != nil {
		t.Fatalf("AddRules returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}
	got := collect(t, book.FindViolations(projectResource("proj-1"), ac))

	wantOrder := []string{"project first", "project second", "org wide"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d violations, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].RuleName != want {
			t.Errorf("violation[%d] from rule %q, want %q", i, got[i].RuleName, want)
		}
	}
}

func TestRuleBookDescendantInheritsAncestorRules(t *testing.T) {
	book := NewRuleBook()
	err := book.AddRules([]RuleDefinition{{
		Name:     "org rule",
		Resource: []ResourceScope{{Type: "organization", ResourceIDs: []string{"org-1"}}},
	}})
	if err != nil {
		t.Fatalf("AddRules returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}

	// The project has no rules of its own; the org rule still applies
	// through the ancestor walk.
	got := collect(t, book.FindViolations(projectResource("proj-1"), ac))
	if len(got) != 1 || got[0].RuleName != "org rule" {
		t.Fatalf("got %v, want single org rule violation", got)
	}

	// A project outside the org hierarchy sees nothing.
	stranger := resource.Resource{
		Identity: resource.Identity{Type: resource.Project, ID: "proj-9"},
		FullName: "organization/org-2/project/proj-9/",
	}
	if got := collect(t, book.FindViolations(stranger, ac)); len(got) != 0 {
		t.Fatalf("unrelated project got %d violations, want 0", len(got))
	}
}

func TestRuleBookEnumerationAbandonedEarly(t *testing.T) {
	book := NewRuleBook()
	err := book.AddRules([]RuleDefinition{
		{Name: "first", Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-1"}}}},
		{Name: "second", Resource: []ResourceScope{{Type: "project", ResourceIDs: []string{"proj-1"}}}},
	})
	if err != nil {
		t.Fatalf("AddRules returned error: %v", err)
	}

	ac := bigquery.AccessControl{DatasetID: "ds1", Role: "OWNER"}

	var seen int
	for range book.FindViolations(projectResource("proj-1"), ac) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("saw %d violations before break, want 1", seen)
	}

	// The sequence is recomputed fresh on every call; abandoning one
	// enumeration does not affect the next.
	if got := collect(t, book.FindViolations(projectResource("proj-1"), ac)); len(got) != 2 {
		t.Fatalf("fresh enumeration got %d violations, want 2", len(got))
	}
}
