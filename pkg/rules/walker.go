package rules

import (
	"github.com/licomply/toolkit/pkg/model"
)

// Ancestor is one node on the path from a scope root down to a context's
// package: the package itself, the dependency edge it was reached through,
// and its detected license findings.
type Ancestor struct {
	Package  model.Package
	Ref      model.PackageReference
	Detected []model.Finding
}

// Context is one visitation of a dependency tree node: the package behind
// the node, the edge used to reach it, and its position in the tree.
// Contexts are immutable once produced by the walker.
type Context struct {
	// Package metadata of the visited node. If the analysis result has no
	// entry for the reference, a bare package holding only the identifier
	// is synthesized.
	Package model.Package

	// Ref is the dependency edge used to reach this node.
	Ref model.PackageReference

	// Ancestors are the nodes from the scope root down to, but excluding,
	// this node.
	Ancestors []Ancestor

	// Level is the tree depth; direct scope dependencies are level 0.
	Level int

	// Scope is the enclosing dependency scope.
	Scope model.Scope

	// Project is the enclosing project, nil only for synthetic contexts
	// built outside the walker.
	Project *model.Project

	// Detected are the detected license findings of the package.
	Detected []model.Finding
}

// EffectiveLinkage returns the edge's linkage, falling back to the
// package-level linkage when the edge carries none.
func (c *Context) EffectiveLinkage() model.Linkage {
	if c.Ref.Linkage != model.LinkageUnspecified {
		return c.Ref.Linkage
	}
	return c.Package.Linkage
}

// Walk traverses every dependency tree of the analysis result depth-first
// and returns one context per (project, scope, node) triple in
// deterministic order: projects and scopes as they appear in the result,
// children as they appear in their parent reference.
//
// A package appearing at several tree positions yields several contexts;
// the walker never deduplicates by identifier. Tree depth is validated at
// result construction, so the walk needs no cycle guard.
func Walk(result *model.AnalysisResult) []Context {
	var contexts []Context

	projects := result.Projects()
	for i := range projects {
		project := &projects[i]
		for _, scope := range project.Scopes {
			for _, ref := range scope.Dependencies {
				contexts = walkRef(result, project, scope, ref, nil, 0, contexts)
			}
		}
	}
	return contexts
}

func walkRef(result *model.AnalysisResult, project *model.Project, scope model.Scope,
	ref model.PackageReference, ancestors []Ancestor, level int, acc []Context) []Context {

	pkg, ok := result.PackageByID(ref.ID)
	if !ok {
		pkg = model.Package{ID: ref.ID}
	}
	detected := result.DetectedFindings(ref.ID)

	acc = append(acc, Context{
		Package:   pkg,
		Ref:       ref,
		Ancestors: ancestors,
		Level:     level,
		Scope:     scope,
		Project:   project,
		Detected:  detected,
	})

	if len(ref.Dependencies) == 0 {
		return acc
	}

	// Each child gets its own ancestor chain; chains are never shared
	// mutably between siblings.
	chain := make([]Ancestor, len(ancestors)+1)
	copy(chain, ancestors)
	chain[len(ancestors)] = Ancestor{Package: pkg, Ref: ref, Detected: detected}

	for _, dep := range ref.Dependencies {
		acc = walkRef(result, project, scope, dep, chain, level+1, acc)
	}
	return acc
}
