package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/metrics"
	"github.com/licomply/toolkit/pkg/model"
)

// Severity grades a violation.
type Severity string

const (
	// SeverityError fails the evaluation run.
	SeverityError Severity = "error"

	// SeverityWarning is reported but does not fail the run.
	SeverityWarning Severity = "warning"

	// SeverityHint is informational.
	SeverityHint Severity = "hint"
)

// SeverityFromString parses a severity as used in rule definitions.
func SeverityFromString(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityHint:
		return Severity(s), nil
	default:
		return "", errors.E("rules.SeverityFromString", errors.KindInvalidRule,
			fmt.Sprintf("unknown severity %q", s))
	}
}

// Rule is one named policy check. Polarity is declarative: a plain rule
// flags contexts its matcher matches; a Require rule flags contexts its
// matcher does NOT match (e.g. "every statically linked dependency must
// have an approved license").
type Rule struct {
	// Name identifies the rule in violations
	Name string

	// Matcher is the compiled predicate tree
	Matcher Matcher

	// Severity of violations this rule emits
	Severity Severity

	// Message emitted with each violation; when empty, the matcher's
	// outcome reason is used
	Message string

	// Require inverts the polarity: a non-match is the violation
	Require bool
}

// Violation is one rule infraction at one tree position. Violations are
// immutable; the evaluator never deduplicates them, downstream consumers
// carry enough identifying context to do so.
type Violation struct {
	// ID uniquely identifies this violation record
	ID string `json:"id"`

	// Rule that was violated
	Rule string `json:"rule"`

	// Package the violation applies to
	Package model.Identifier `json:"package"`

	// Project enclosing the dependency, if any
	Project model.Identifier `json:"project,omitempty"`

	// Scope name enclosing the dependency
	Scope string `json:"scope,omitempty"`

	// Level is the tree level of the offending node
	Level int `json:"level"`

	// Message describes the violation
	Message string `json:"message"`

	// Severity of the violation
	Severity Severity `json:"severity"`
}

// EvalError records a rule that could not be evaluated against one
// specific context, without aborting the run.
type EvalError struct {
	Rule    string           `json:"rule"`
	Package model.Identifier `json:"package"`
	Err     error            `json:"-"`
	Reason  string           `json:"reason"`
}

// Result is the outcome of one evaluation run.
type Result struct {
	// RunID uniquely identifies the evaluation run
	RunID string `json:"run_id"`

	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`

	// Violations in rule declaration order, then walk order
	Violations []Violation `json:"violations"`

	// Errors are per-(rule, context) evaluation failures
	Errors []EvalError `json:"errors,omitempty"`
}

// HasErrorViolations reports whether any violation has error severity.
func (r *Result) HasErrorViolations() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Evaluator runs rule lists against a RuleSet.
type Evaluator struct {
	rs      *RuleSet
	logger  log.Logger
	metrics metrics.Collector
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEvaluatorLogger sets the evaluator's logger.
func WithEvaluatorLogger(logger log.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector recording evaluation counters.
func WithMetrics(collector metrics.Collector) EvaluatorOption {
	return func(e *Evaluator) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// NewEvaluator creates an evaluator bound to one RuleSet.
func NewEvaluator(rs *RuleSet, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{rs: rs, logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a convenience evaluation without logging or metrics.
func Evaluate(rs *RuleSet, ruleList []Rule) (*Result, error) {
	return NewEvaluator(rs).Evaluate(ruleList)
}

// Evaluate applies every rule to every dependency context of the rule set.
//
// Rules run in declaration order and never short-circuit across each
// other: a context failing one rule is still checked against all the
// others, so a single context may yield several violations. Invalid rules
// are fatal before any evaluation begins; per-context evaluation failures
// are collected in the result instead of aborting the run.
func (e *Evaluator) Evaluate(ruleList []Rule) (*Result, error) {
	const op = "rules.Evaluate"

	if err := validateRules(ruleList); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	contexts := e.rs.Contexts()
	start := time.Now()

	for _, rule := range ruleList {
		for i := range contexts {
			ctx := &contexts[i]

			out, err := rule.Matcher.Matches(ctx)
			if err != nil {
				e.logger.Warn("rule %q failed on package %s: %v", rule.Name, ctx.Package.ID, err)
				result.Errors = append(result.Errors, EvalError{
					Rule:    rule.Name,
					Package: ctx.Package.ID,
					Err:     err,
					Reason:  err.Error(),
				})
				e.count(metrics.RulesEvaluatedTotal.Name, "rule", rule.Name, "status", "error")
				continue
			}

			violated := out.Matched != rule.Require
			status := "pass"
			if violated {
				status = "violation"
				result.Violations = append(result.Violations, newViolation(rule, ctx, out))
				e.count(metrics.ViolationsTotal.Name, "severity", string(rule.Severity))
			}
			e.count(metrics.RulesEvaluatedTotal.Name, "rule", rule.Name, "status", status)
		}
	}

	if e.metrics != nil {
		e.metrics.HistogramObserve(metrics.EvaluationDuration.Name, time.Since(start).Seconds())
	}
	e.logger.Info("evaluated %d rules over %d contexts: %d violations, %d errors",
		len(ruleList), len(contexts), len(result.Violations), len(result.Errors))

	return result, nil
}

func (e *Evaluator) count(name string, labels ...string) {
	if e.metrics != nil {
		e.metrics.CounterInc(name, labels...)
	}
}

func newViolation(rule Rule, ctx *Context, out Outcome) Violation {
	message := rule.Message
	if message == "" {
		message = out.Reason
	}
	v := Violation{
		ID:       uuid.NewString(),
		Rule:     rule.Name,
		Package:  ctx.Package.ID,
		Scope:    ctx.Scope.Name,
		Level:    ctx.Level,
		Message:  message,
		Severity: rule.Severity,
	}
	if ctx.Project != nil {
		v.Project = ctx.Project.ID
	}
	return v
}

// validateRules rejects configuration defects before evaluation starts.
func validateRules(ruleList []Rule) error {
	const op = "rules.Evaluate"

	seen := make(map[string]struct{}, len(ruleList))
	for i, rule := range ruleList {
		switch {
		case rule.Name == "":
			return errors.E(op, errors.KindInvalidRule, fmt.Sprintf("rule %d has no name", i))
		case rule.Matcher == nil:
			return errors.E(op, errors.KindInvalidRule, fmt.Sprintf("rule %q has no matcher", rule.Name))
		}
		if _, err := SeverityFromString(string(rule.Severity)); err != nil {
			return errors.E(op, errors.KindInvalidRule,
				fmt.Sprintf("rule %q has invalid severity %q", rule.Name, rule.Severity))
		}
		if _, dup := seen[rule.Name]; dup {
			return errors.E(op, errors.KindInvalidRule, fmt.Sprintf("duplicate rule name %q", rule.Name))
		}
		seen[rule.Name] = struct{}{}
	}
	return nil
}
