package model

import (
	"fmt"

	"github.com/licomply/toolkit/pkg/errors"
)

// MaxTreeDepth bounds the nesting of dependency trees accepted into an
// AnalysisResult. Dependency trees are shallow in practice; anything deeper
// indicates malformed self-referential input data.
const MaxTreeDepth = 200

// AnalysisResult is one fully resolved analysis run: all projects with their
// dependency trees, the metadata of every referenced package, and the
// detected license findings per package. It is read-only once constructed;
// the rule engine and the license resolver share it without locking.
type AnalysisResult struct {
	projects []Project
	packages []Package
	index    map[Identifier]int

	// detected license findings keyed by package identifier
	findings map[Identifier][]Finding
}

// NewAnalysisResult validates and assembles an analysis snapshot.
// Validation rejects dependency trees nested deeper than MaxTreeDepth so
// the tree walker never has to guard against runaway recursion, and
// duplicate package entries so lookups are unambiguous.
func NewAnalysisResult(projects []Project, packages []Package, findings map[Identifier][]Finding) (*AnalysisResult, error) {
	const op = "model.NewAnalysisResult"

	index := make(map[Identifier]int, len(packages))
	for i, pkg := range packages {
		if _, dup := index[pkg.ID]; dup {
			return nil, errors.E(op, errors.KindInvalidInput,
				fmt.Sprintf("duplicate package entry %s", pkg.ID))
		}
		index[pkg.ID] = i
	}

	for _, project := range projects {
		for _, scope := range project.Scopes {
			for _, ref := range scope.Dependencies {
				if err := checkDepth(ref, 1); err != nil {
					return nil, errors.E(op, errors.KindInvalidInput,
						fmt.Sprintf("project %s scope %q", project.ID, scope.Name), err)
				}
			}
		}
	}

	copied := make(map[Identifier][]Finding, len(findings))
	for id, fs := range findings {
		copied[id] = append([]Finding(nil), fs...)
	}

	return &AnalysisResult{
		projects: append([]Project(nil), projects...),
		packages: append([]Package(nil), packages...),
		index:    index,
		findings: copied,
	}, nil
}

func checkDepth(ref PackageReference, depth int) error {
	if depth > MaxTreeDepth {
		return fmt.Errorf("dependency tree below %s exceeds max depth %d", ref.ID, MaxTreeDepth)
	}
	for _, dep := range ref.Dependencies {
		if err := checkDepth(dep, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Projects returns the analyzed projects in analysis order.
func (r *AnalysisResult) Projects() []Project {
	return r.projects
}

// Packages returns the metadata of all referenced packages.
func (r *AnalysisResult) Packages() []Package {
	return r.packages
}

// PackageByID looks up package metadata by identifier.
func (r *AnalysisResult) PackageByID(id Identifier) (Package, bool) {
	i, ok := r.index[id]
	if !ok {
		return Package{}, false
	}
	return r.packages[i], true
}

// DetectedFindings returns the detected license findings for a package,
// or nil if the package was not scanned.
func (r *AnalysisResult) DetectedFindings(id Identifier) []Finding {
	return r.findings[id]
}
