// Package license resolves the licenses of a package from its declared,
// concluded and detected evidence under a configurable view policy.
package license

import (
	"fmt"

	"github.com/licomply/toolkit/pkg/errors"
)

// Source tags where a piece of license evidence came from. The set is
// closed; precedence between sources is defined per View, not globally.
type Source string

const (
	// SourceDeclared marks licenses stated in package manifest metadata.
	SourceDeclared Source = "declared"

	// SourceConcluded marks curated or manually overridden licenses.
	SourceConcluded Source = "concluded"

	// SourceDetected marks licenses found by scanning file contents.
	SourceDetected Source = "detected"
)

// AllSources returns all evidence sources.
func AllSources() []Source {
	return []Source{SourceDeclared, SourceConcluded, SourceDetected}
}

// SourceFromString parses a source tag.
func SourceFromString(s string) (Source, error) {
	switch Source(s) {
	case SourceDeclared, SourceConcluded, SourceDetected:
		return Source(s), nil
	default:
		return "", errors.E("license.SourceFromString", errors.KindInvalidInput,
			fmt.Sprintf("unknown license source %q", s))
	}
}

// ResolvedLicense is one (license, source) pair produced by a view.
// The license identifier is never blank.
type ResolvedLicense struct {
	// License is the SPDX license identifier or expression string
	License string `json:"license"`

	// OrLater is set when a concluded "X+" identifier was decomposed to
	// its base identifier X
	OrLater bool `json:"or_later,omitempty"`

	// Source of the evidence
	Source Source `json:"source"`
}
