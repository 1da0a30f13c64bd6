package rules

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/license"
	"github.com/licomply/toolkit/pkg/model"
)

// IsAtTreeLevel matches contexts at exactly the given tree level.
// Direct scope dependencies are level 0.
func IsAtTreeLevel(level int) Matcher {
	desc := fmt.Sprintf("isAtTreeLevel(%d)", level)
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		if ctx.Level == level {
			return Outcome{Matched: true, Reason: fmt.Sprintf("dependency is at tree level %d", level)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("dependency is at tree level %d, not %d", ctx.Level, level)}, nil
	})
}

// IsProjectFromOrg matches contexts whose enclosing project belongs to the
// given organization (exact, case-sensitive namespace match). Evaluating it
// on a context without an enclosing project is a configuration error.
func IsProjectFromOrg(org string) Matcher {
	desc := fmt.Sprintf("isProjectFromOrg(%s)", org)
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		if ctx.Project == nil {
			return Outcome{}, errors.E("rules.IsProjectFromOrg", errors.KindMissingContext,
				"context has no enclosing project")
		}
		got := ctx.Project.ID.Organization()
		if got == org {
			return Outcome{Matched: true, Reason: fmt.Sprintf("project %s is from organization %q", ctx.Project.ID, org)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("project %s is from organization %q, not %q", ctx.Project.ID, got, org)}, nil
	})
}

// IsStaticallyLinked matches dependencies whose effective linkage is static.
func IsStaticallyLinked() Matcher {
	return newMatcher("isStaticallyLinked()", func(ctx *Context) (Outcome, error) {
		linkage := ctx.EffectiveLinkage()
		if linkage == model.LinkageStatic {
			return Outcome{Matched: true, Reason: fmt.Sprintf("package %s is statically linked", ctx.Package.ID)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("package %s linkage is %q, not static", ctx.Package.ID, linkage)}, nil
	})
}

// IsInScope matches contexts inside the named dependency scope.
func IsInScope(name string) Matcher {
	desc := fmt.Sprintf("isInScope(%s)", name)
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		if ctx.Scope.Name == name {
			return Outcome{Matched: true, Reason: fmt.Sprintf("dependency is in scope %q", name)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("dependency is in scope %q, not %q", ctx.Scope.Name, name)}, nil
	})
}

// IsType matches packages of the given package manager type.
func IsType(pkgType string) Matcher {
	desc := fmt.Sprintf("isType(%s)", pkgType)
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		if ctx.Package.ID.Type == pkgType {
			return Outcome{Matched: true, Reason: fmt.Sprintf("package %s has type %q", ctx.Package.ID, pkgType)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("package %s has type %q, not %q", ctx.Package.ID, ctx.Package.ID.Type, pkgType)}, nil
	})
}

// HasLicense matches packages whose licenses, resolved under the given
// view, include the given identifier.
func HasLicense(view license.View, id string) Matcher {
	desc := fmt.Sprintf("hasLicense(%s, %s)", view, id)
	resolver := license.NewResolver()
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		resolved := resolver.Resolve(view, ctx.Package, ctx.Detected)
		for _, rl := range resolved {
			if rl.License == id {
				return Outcome{Matched: true, Reason: fmt.Sprintf("package %s has license %s (%s)", ctx.Package.ID, id, rl.Source)}, nil
			}
		}
		return Outcome{Reason: fmt.Sprintf("package %s does not resolve to license %s under view %s", ctx.Package.ID, id, view)}, nil
	})
}

// HasAncestor matches when some ancestor of the context satisfies the
// inner matcher. The inner matcher sees the ancestor at its own tree
// position with the dependency edge it was actually reached through and
// its own detected findings.
func HasAncestor(inner Matcher) Matcher {
	desc := "hasAncestor(" + inner.String() + ")"
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		for i, ancestor := range ctx.Ancestors {
			ancestorCtx := Context{
				Package:   ancestor.Package,
				Ref:       ancestor.Ref,
				Ancestors: ctx.Ancestors[:i],
				Level:     i,
				Scope:     ctx.Scope,
				Project:   ctx.Project,
				Detected:  ancestor.Detected,
			}
			out, err := inner.Matches(&ancestorCtx)
			if err != nil {
				return Outcome{}, err
			}
			if out.Matched {
				return Outcome{Matched: true, Reason: fmt.Sprintf("ancestor %s matches: %s", ancestor.Package.ID, out.Reason)}, nil
			}
		}
		return Outcome{Reason: fmt.Sprintf("no ancestor of %s matches %s", ctx.Package.ID, inner)}, nil
	})
}

// VersionSatisfies matches packages whose version satisfies the semver
// constraint. The constraint is validated eagerly; an invalid constraint
// is an invalid-rule error. Packages with unparsable versions never match.
func VersionSatisfies(constraint string) (Matcher, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.E("rules.VersionSatisfies", errors.KindInvalidRule,
			fmt.Sprintf("invalid version constraint %q", constraint), err)
	}
	desc := fmt.Sprintf("versionSatisfies(%s)", constraint)
	return newMatcher(desc, func(ctx *Context) (Outcome, error) {
		v, err := semver.NewVersion(ctx.Package.ID.Version)
		if err != nil {
			return Outcome{Reason: fmt.Sprintf("package %s version %q is not semver", ctx.Package.ID, ctx.Package.ID.Version)}, nil
		}
		if c.Check(v) {
			return Outcome{Matched: true, Reason: fmt.Sprintf("version %s satisfies %q", v, constraint)}, nil
		}
		return Outcome{Reason: fmt.Sprintf("version %s does not satisfy %q", v, constraint)}, nil
	}), nil
}
