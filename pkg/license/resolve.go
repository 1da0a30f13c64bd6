package license

import (
	"sort"

	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/model"
	"github.com/licomply/toolkit/pkg/spdx"
)

// Resolver merges license evidence from the enabled sources of a view into
// a deduplicated, deterministically ordered set of (license, source) pairs.
type Resolver struct {
	logger log.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used to surface recovered conditions such as
// malformed concluded license expressions.
func WithLogger(logger log.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. Without options it logs nothing.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve applies the view to a package's evidence using a silent default
// resolver. See Resolver.Resolve.
func Resolve(view View, pkg model.Package, detected []model.Finding) []ResolvedLicense {
	return defaultResolver.Resolve(view, pkg, detected)
}

// Resolve merges the package's declared licenses, its concluded license
// expression and the detected findings according to the view's precedence.
//
// A concluded expression counts as present only when it is non-blank and
// parses as a valid SPDX expression; a malformed expression is logged and
// treated as absent so resolution falls through to the next tier. Blank
// license identifiers are never emitted. The result is deduplicated per
// (license, or-later, source) tuple and sorted for reproducible reports.
func (r *Resolver) Resolve(view View, pkg model.Package, detected []model.Finding) []ResolvedLicense {
	concluded := r.concluded(pkg)
	declared := declaredOf(pkg)
	found := detectedOf(detected)

	var out []ResolvedLicense
	switch view {
	case ViewAll:
		out = append(out, concluded...)
		out = append(out, declared...)
		out = append(out, found...)

	case ViewConcludedOrRest:
		if len(concluded) > 0 {
			out = concluded
		} else {
			out = append(declared, found...)
		}

	case ViewConcludedOrDeclaredOrDetected:
		switch {
		case len(concluded) > 0:
			out = concluded
		case len(declared) > 0:
			out = declared
		default:
			out = found
		}

	case ViewConcludedOrDetected:
		if len(concluded) > 0 {
			out = concluded
		} else {
			out = found
		}

	case ViewOnlyConcluded:
		out = concluded

	case ViewOnlyDeclared:
		out = declared

	case ViewOnlyDetected:
		out = found

	default:
		// Unknown views are rejected at rule load time; reaching this
		// branch is a programmer error.
		panic("license: unknown view " + string(view))
	}

	return dedupe(out)
}

// concluded decomposes the package's concluded license expression into one
// pair per leaf identifier. Malformed expressions resolve to nil.
func (r *Resolver) concluded(pkg model.Package) []ResolvedLicense {
	expr := pkg.ConcludedLicense
	if isBlank(expr) {
		return nil
	}

	parsed, err := spdx.Parse(expr)
	if err != nil {
		r.logger.Warn("package %s: malformed concluded license %q treated as absent: %v",
			pkg.ID, expr, err)
		return nil
	}

	leaves := parsed.Decompose()
	out := make([]ResolvedLicense, 0, len(leaves))
	for _, leaf := range leaves {
		out = append(out, ResolvedLicense{
			License: leaf.Base(),
			OrLater: leaf.OrLater,
			Source:  SourceConcluded,
		})
	}
	return out
}

func declaredOf(pkg model.Package) []ResolvedLicense {
	out := make([]ResolvedLicense, 0, len(pkg.DeclaredLicenses))
	for _, lic := range pkg.DeclaredLicenses {
		if isBlank(lic) {
			continue
		}
		out = append(out, ResolvedLicense{License: lic, Source: SourceDeclared})
	}
	return out
}

func detectedOf(findings []model.Finding) []ResolvedLicense {
	out := make([]ResolvedLicense, 0, len(findings))
	for _, f := range findings {
		if isBlank(f.License) {
			continue
		}
		out = append(out, ResolvedLicense{License: f.License, OrLater: f.OrLater, Source: SourceDetected})
	}
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			return false
		}
	}
	return true
}

// dedupe removes duplicate tuples and sorts by license, then source, then
// or-later flag. Order is insignificant to correctness but must be stable.
func dedupe(in []ResolvedLicense) []ResolvedLicense {
	seen := make(map[ResolvedLicense]struct{}, len(in))
	out := make([]ResolvedLicense, 0, len(in))
	for _, rl := range in {
		if _, dup := seen[rl]; dup {
			continue
		}
		seen[rl] = struct{}{}
		out = append(out, rl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].License != out[j].License {
			return out[i].License < out[j].License
		}
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return !out[i].OrLater && out[j].OrLater
	})
	return out
}
