package rules

import (
	"fmt"
	"strings"
)

// Outcome is the result of evaluating one matcher against one context:
// whether it matched plus a human-readable reason either way.
type Outcome struct {
	Matched bool
	Reason  string
}

// Matcher is a side-effect-free predicate over a dependency context.
// Matches is idempotent: evaluating the same matcher against the same
// context any number of times yields the same outcome. An error signals a
// caller configuration problem (e.g. a required context field is missing),
// not a non-match.
type Matcher interface {
	Matches(ctx *Context) (Outcome, error)

	// String describes the predicate, for rule messages and diagnostics.
	String() string
}

// matcherFn adapts a closure to the Matcher interface.
type matcherFn struct {
	desc string
	fn   func(ctx *Context) (Outcome, error)
}

func (m matcherFn) Matches(ctx *Context) (Outcome, error) { return m.fn(ctx) }
func (m matcherFn) String() string                        { return m.desc }

func newMatcher(desc string, fn func(ctx *Context) (Outcome, error)) Matcher {
	return matcherFn{desc: desc, fn: fn}
}

// =============================================================================
// Combinators
// =============================================================================

// And matches when every sub-matcher matches. Evaluation short-circuits on
// the first non-match or error.
func And(matchers ...Matcher) Matcher {
	return newMatcher(describe("all", matchers), func(ctx *Context) (Outcome, error) {
		for _, m := range matchers {
			out, err := m.Matches(ctx)
			if err != nil {
				return Outcome{}, err
			}
			if !out.Matched {
				return Outcome{Matched: false, Reason: out.Reason}, nil
			}
		}
		return Outcome{Matched: true, Reason: fmt.Sprintf("all of %d conditions hold", len(matchers))}, nil
	})
}

// Or matches when any sub-matcher matches. Evaluation short-circuits on
// the first match or error.
func Or(matchers ...Matcher) Matcher {
	return newMatcher(describe("any", matchers), func(ctx *Context) (Outcome, error) {
		reasons := make([]string, 0, len(matchers))
		for _, m := range matchers {
			out, err := m.Matches(ctx)
			if err != nil {
				return Outcome{}, err
			}
			if out.Matched {
				return out, nil
			}
			reasons = append(reasons, out.Reason)
		}
		return Outcome{Matched: false, Reason: strings.Join(reasons, "; ")}, nil
	})
}

// Not negates a matcher. Errors pass through unnegated.
func Not(m Matcher) Matcher {
	return newMatcher("not("+m.String()+")", func(ctx *Context) (Outcome, error) {
		out, err := m.Matches(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Matched: !out.Matched, Reason: out.Reason}, nil
	})
}

func describe(op string, matchers []Matcher) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = m.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}
