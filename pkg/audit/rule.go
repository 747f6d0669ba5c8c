package audit

import (
	"iter"
	"strings"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/glob"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

// Rule is one compiled policy unit: a name, its definition index, a
// compiled pattern per entry field, and a mode. Rules are immutable
// once built.
type Rule struct {
	// Name is the rule name from the definition.
	Name string

	// Index is the zero-based position of the definition in the rules
	// file.
	Index int

	// Mode is the policy stance: whitelist or blacklist.
	Mode Mode

	datasetID    glob.Matcher
	specialGroup glob.Matcher
	userEmail    glob.Matcher
	domain       glob.Matcher
	groupEmail   glob.Matcher
	role         glob.Matcher
}

// buildRule compiles one rule definition into a Rule. Absent pattern
// fields default to "*". The role pattern is compiled from the
// upper-cased input: entry roles are expected pre-normalized to upper
// case by the caller, and matching is case-sensitive.
func buildRule(def RuleDefinition, index int) (*Rule, error) {
	def.applyDefaults()

	mode, err := ParseMode(def.Mode)
	if err != nil {
		return nil, &InvalidRuleError{RuleIndex: index, RuleName: def.Name, Message: "invalid mode", Cause: err}
	}

	r := &Rule{Name: def.Name, Index: index, Mode: mode}

	for _, f := range []struct {
		pattern string
		dst     *glob.Matcher
	}{
		{def.DatasetID, &r.datasetID},
		{def.SpecialGroup, &r.specialGroup},
		{def.UserEmail, &r.userEmail},
		{def.Domain, &r.domain},
		{def.GroupEmail, &r.groupEmail},
		{strings.ToUpper(def.Role), &r.role},
	} {
		m, err := glob.Compile(f.pattern)
		if err != nil {
			return nil, &InvalidRuleError{RuleIndex: index, RuleName: def.Name, Message: "invalid pattern", Cause: err}
		}
		*f.dst = m
	}

	return r, nil
}

// IsApplicable reports whether the rule governs the given entry at
// all: both the dataset ID and the role patterns must match. It is a
// cheap pre-filter; a non-applicable rule contributes no violation.
func (r *Rule) IsApplicable(ac bigquery.AccessControl) bool {
	return glob.AllMatch([]glob.Pair{
		{Matcher: r.datasetID, Value: ac.DatasetID},
		{Matcher: r.role, Value: ac.Role},
	})
}

// Violations yields the violations this rule finds in the entry:
// at most one. A blacklist rule violates when the grantee pattern set
// fully matches; a whitelist rule violates when it does not. The two
// modes are logical complements of the same predicate.
func (r *Rule) Violations(ac bigquery.AccessControl) iter.Seq[Violation] {
	return func(yield func(Violation) bool) {
		if !r.IsApplicable(ac) {
			return
		}

		allMatched := glob.AllMatch([]glob.Pair{
			{Matcher: r.specialGroup, Value: ac.SpecialGroup},
			{Matcher: r.userEmail, Value: ac.UserEmail},
			{Matcher: r.domain, Value: ac.Domain},
			{Matcher: r.groupEmail, Value: ac.GroupEmail},
		})

		if violated := allMatched == (r.Mode == Blacklist); !violated {
			return
		}

		yield(Violation{
			ResourceType:  resource.Bigquery,
			ResourceID:    ac.DatasetID,
			FullName:      ac.FullName,
			RuleName:      r.Name,
			RuleIndex:     r.Index,
			ViolationType: ViolationType,
			DatasetID:     ac.DatasetID,
			Role:          ac.Role,
			SpecialGroup:  ac.SpecialGroup,
			UserEmail:     ac.UserEmail,
			Domain:        ac.Domain,
			GroupEmail:    ac.GroupEmail,
			View:          ac.View,
			ResourceData:  ac.RawJSON,
		})
	}
}
