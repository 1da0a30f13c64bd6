// Package rules evaluates policy rules against a resolved dependency tree.
//
// A RuleSet wraps one read-only analysis result. The tree walker turns it
// into per-node evaluation contexts, matchers test properties of a context,
// and the evaluator runs named rules over all contexts, collecting
// violations.
package rules

import (
	"github.com/licomply/toolkit/pkg/license"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/model"
)

// RuleSet binds one fully resolved analysis result for rule evaluation.
// It is read-only for the duration of an evaluation run; contexts derived
// from it are immutable value objects safe to evaluate concurrently.
type RuleSet struct {
	result   *model.AnalysisResult
	resolver *license.Resolver
	logger   log.Logger

	// contexts is the materialized walk of the dependency trees.
	// Materializing eagerly keeps the sequence trivially re-iterable
	// for multi-pass evaluation.
	contexts []Context
}

// RuleSetOption configures a RuleSet.
type RuleSetOption func(*RuleSet)

// WithRuleSetLogger sets the logger for the rule set and its resolver.
func WithRuleSetLogger(logger log.Logger) RuleSetOption {
	return func(rs *RuleSet) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

// NewRuleSet creates a RuleSet over an analysis result and walks its
// dependency trees.
func NewRuleSet(result *model.AnalysisResult, opts ...RuleSetOption) *RuleSet {
	rs := &RuleSet{
		result: result,
		logger: log.NopLogger{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	rs.resolver = license.NewResolver(license.WithLogger(rs.logger))
	rs.contexts = Walk(result)
	return rs
}

// Result returns the wrapped analysis result.
func (rs *RuleSet) Result() *model.AnalysisResult {
	return rs.result
}

// Contexts returns all dependency contexts of the wrapped result in
// deterministic walk order. The returned slice may be iterated any number
// of times.
func (rs *RuleSet) Contexts() []Context {
	return rs.contexts
}

// ResolveLicenses resolves a context's package licenses under a view.
func (rs *RuleSet) ResolveLicenses(view license.View, ctx *Context) []license.ResolvedLicense {
	return rs.resolver.Resolve(view, ctx.Package, ctx.Detected)
}
