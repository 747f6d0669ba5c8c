package audit

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

// RuleSource provides raw rule definitions to the engine.
type RuleSource interface {
	// LoadRuleDefinitions loads every rule definition, in file order.
	LoadRuleDefinitions(ctx context.Context) ([]RuleDefinition, error)
}

// Engine owns the rule book lifecycle and exposes the violation query.
//
// The engine has two states: unbuilt (no book installed) and built.
// A build compiles a complete new book and installs it with an atomic
// pointer swap; queries read the pointer without locks, so an
// enumeration over the old book runs to completion unaffected by a
// concurrent rebuild. buildMu serializes builds, nothing else.
type Engine struct {
	source RuleSource
	logger *slog.Logger

	buildMu sync.Mutex
	book    atomic.Pointer[RuleBook]
}

// NewEngine creates an engine in the unbuilt state. The first query
// (or an explicit BuildRuleBook call) builds the book.
func NewEngine(source RuleSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{source: source, logger: logger}
}

// Built reports whether a rule book is installed.
func (e *Engine) Built() bool {
	return e.book.Load() != nil
}

// RuleCount returns the number of compiled rules in the installed
// book, or zero when unbuilt.
func (e *Engine) RuleCount() int {
	book := e.book.Load()
	if book == nil {
		return 0
	}
	return book.RuleCount()
}

// BuildRuleBook builds a fresh rule book from the rule source and
// installs it, replacing any previous book. On failure nothing is
// installed: the previous book, if any, remains authoritative.
func (e *Engine) BuildRuleBook(ctx context.Context) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	defs, err := e.source.LoadRuleDefinitions(ctx)
	if err != nil {
		return err
	}

	book := NewRuleBook()
	if err := book.AddRules(defs); err != nil {
		return err
	}

	e.book.Store(book)
	e.logger.Info("rule book built",
		"rule_definitions", len(defs),
		"compiled_rules", book.RuleCount(),
	)
	return nil
}

// AddRules bulk-loads additional definitions into the installed book.
// It is a no-op when the engine is unbuilt. The installed book itself
// is never touched: additions go into a clone that replaces it.
func (e *Engine) AddRules(defs []RuleDefinition) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	current := e.book.Load()
	if current == nil {
		return nil
	}

	book := current.clone()
	if err := book.AddRules(defs); err != nil {
		return err
	}

	e.book.Store(book)
	return nil
}

// FindViolations enumerates the violations the entry commits against
// the rules governing res and its ancestors. When the engine is
// unbuilt, or forceRebuild is set, a fresh build runs first; a build
// failure surfaces as the returned error and leaves any previous book
// installed.
func (e *Engine) FindViolations(ctx context.Context, res resource.Resource, ac bigquery.AccessControl, forceRebuild bool) (iter.Seq[Violation], error) {
	if e.book.Load() == nil || forceRebuild {
		if err := e.BuildRuleBook(ctx); err != nil {
			return nil, err
		}
	}
	return e.book.Load().FindViolations(res, ac), nil
}
