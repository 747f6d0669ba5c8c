package audit

import (
	"iter"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

// RuleBook indexes compiled rules by the identity of the resource they
// govern. It is append-only while being built and never mutated after
// a build completes; a rebuild produces a whole new book.
type RuleBook struct {
	resourceRules map[resource.Identity][]*Rule
	ruleCount     int
}

// NewRuleBook returns an empty rule book.
func NewRuleBook() *RuleBook {
	return &RuleBook{
		resourceRules: make(map[resource.Identity][]*Rule),
	}
}

// AddRules compiles and indexes the definitions in file order,
// assigning each a zero-based index. The first invalid definition
// aborts with no further rules indexed.
func (b *RuleBook) AddRules(defs []RuleDefinition) error {
	for i, def := range defs {
		if err := b.addRule(def, i); err != nil {
			return err
		}
	}
	return nil
}

// addRule compiles one definition and registers it under every
// resource identity its scopes name. A scope with an empty resource-id
// list is a build-time error.
func (b *RuleBook) addRule(def RuleDefinition, index int) error {
	if len(def.Resource) == 0 {
		return &InvalidRuleError{RuleIndex: index, RuleName: def.Name, Message: "missing resource scope"}
	}

	for _, scope := range def.Resource {
		if len(scope.ResourceIDs) == 0 {
			return &InvalidRuleError{RuleIndex: index, RuleName: def.Name, Message: "missing resource ids"}
		}

		rule, err := buildRule(def, index)
		if err != nil {
			return err
		}

		for _, id := range scope.ResourceIDs {
			key := resource.New(id, resource.Type(scope.Type)).Identity
			b.resourceRules[key] = append(b.resourceRules[key], rule)
		}
		b.ruleCount++
	}
	return nil
}

// clone returns a new book with the same registrations. The clone
// shares Rule values (they are immutable) but owns its own index, so
// adding to it never disturbs the original.
func (b *RuleBook) clone() *RuleBook {
	c := &RuleBook{
		resourceRules: make(map[resource.Identity][]*Rule, len(b.resourceRules)),
		ruleCount:     b.ruleCount,
	}
	for key, rules := range b.resourceRules {
		c.resourceRules[key] = append([]*Rule(nil), rules...)
	}
	return c
}

// RuleCount returns the number of compiled rules registered in the
// book. Rules registered under several identities count once.
func (b *RuleBook) RuleCount() int {
	return b.ruleCount
}

// FindViolations enumerates every violation the entry commits against
// rules governing res or any of its ancestors. Ancestors are walked
// closest-first as encoded in the resource's full name, and rules
// within an ancestor fire in definition order; the sequence preserves
// that ordering and imposes nothing else. It is produced lazily and is
// safe to abandon early.
func (b *RuleBook) FindViolations(res resource.Resource, ac bigquery.AccessControl) iter.Seq[Violation] {
	return func(yield func(Violation) bool) {
		for _, ancestor := range resource.Ancestors(res, res.FullName) {
			for _, rule := range b.resourceRules[ancestor.Identity] {
				for v := range rule.Violations(ac) {
					if !yield(v) {
						return
					}
				}
			}
		}
	}
}
