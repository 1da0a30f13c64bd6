package license

import (
	"fmt"

	"github.com/licomply/toolkit/pkg/errors"
)

// View names a resolution policy: which evidence sources are consulted and
// which one wins when several are present. The set of views is closed and
// each view's precedence is matched exhaustively in Resolver.Resolve.
type View string

const (
	// ViewAll emits every source's evidence, unfiltered.
	ViewAll View = "all"

	// ViewConcludedOrRest emits only the concluded license when present,
	// otherwise the union of declared and detected.
	ViewConcludedOrRest View = "concluded_or_rest"

	// ViewConcludedOrDeclaredOrDetected is the full waterfall: concluded,
	// else declared, else detected.
	ViewConcludedOrDeclaredOrDetected View = "concluded_or_declared_or_detected"

	// ViewConcludedOrDetected is the waterfall skipping declared entirely.
	ViewConcludedOrDetected View = "concluded_or_detected"

	// ViewOnlyConcluded emits concluded evidence only.
	ViewOnlyConcluded View = "only_concluded"

	// ViewOnlyDeclared emits declared evidence only.
	ViewOnlyDeclared View = "only_declared"

	// ViewOnlyDetected emits detected evidence only.
	ViewOnlyDetected View = "only_detected"
)

// AllViews returns every defined view.
func AllViews() []View {
	return []View{
		ViewAll,
		ViewConcludedOrRest,
		ViewConcludedOrDeclaredOrDetected,
		ViewConcludedOrDetected,
		ViewOnlyConcluded,
		ViewOnlyDeclared,
		ViewOnlyDetected,
	}
}

// ViewFromString parses a view name as used in rule definitions.
// Unknown names are an invalid-rule error: rule definitions referencing
// them must fail at load time, before any evaluation.
func ViewFromString(s string) (View, error) {
	switch View(s) {
	case ViewAll, ViewConcludedOrRest, ViewConcludedOrDeclaredOrDetected,
		ViewConcludedOrDetected, ViewOnlyConcluded, ViewOnlyDeclared, ViewOnlyDetected:
		return View(s), nil
	default:
		return "", errors.E("license.ViewFromString", errors.KindInvalidRule,
			fmt.Sprintf("unknown license view %q", s))
	}
}
