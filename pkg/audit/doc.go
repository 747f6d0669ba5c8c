// Package audit implements the rule book and matching engine for
// BigQuery dataset access controls.
//
// Raw rule definitions are compiled into pattern-based rules, indexed
// by the resources they govern, and evaluated against access-control
// entries by walking the resource's ancestor chain. A rule is either a
// blacklist (matching the pattern set is the violation) or a whitelist
// (failing to match the pattern set is the violation).
//
// # Evaluation Flow
//
//	RuleDefinition (rules file)
//	       ↓
//	RuleBook build: compile patterns, index by resource identity
//	       ↓
//	Query (resource, access-control entry):
//	  for each ancestor of resource, closest-first:
//	    for each rule governing the ancestor, in definition order:
//	      applicable? → decide → yield Violation
//
// # Thread Safety
//
// A built RuleBook is immutable and safe for unlimited concurrent
// readers. The Engine installs books with an atomic pointer swap; an
// enumeration running against the old book is unaffected by a
// concurrent rebuild. No locks are taken on the query path.
package audit
