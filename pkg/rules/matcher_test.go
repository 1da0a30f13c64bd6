package rules

import (
	"testing"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/license"
	"github.com/licomply/toolkit/pkg/model"
)

func levelContext(level int) *Context {
	project := model.Project{ID: model.NewIdentifier("maven", "here", "proj", "1.0.0")}
	return &Context{
		Package: model.Package{ID: id("pkg")},
		Ref:     model.PackageReference{ID: id("pkg")},
		Level:   level,
		Scope:   model.Scope{Name: "compile"},
		Project: &project,
	}
}

func mustMatch(t *testing.T, m Matcher, ctx *Context) Outcome {
	t.Helper()
	out, err := m.Matches(ctx)
	if err != nil {
		t.Fatalf("%s failed: %v", m, err)
	}
	return out
}

func TestIsAtTreeLevel(t *testing.T) {
	m := IsAtTreeLevel(0)

	if out := mustMatch(t, m, levelContext(0)); !out.Matched {
		t.Errorf("level 0 context should match: %s", out.Reason)
	}
	if out := mustMatch(t, m, levelContext(1)); out.Matched {
		t.Errorf("level 1 context should not match isAtTreeLevel(0)")
	}
}

func TestIsProjectFromOrg(t *testing.T) {
	ctx := levelContext(0)

	if out := mustMatch(t, IsProjectFromOrg("here"), ctx); !out.Matched {
		t.Errorf("org 'here' should match: %s", out.Reason)
	}
	if out := mustMatch(t, IsProjectFromOrg("unknown"), ctx); out.Matched {
		t.Errorf("org 'unknown' should not match")
	}
	// Case-sensitive exact match.
	if out := mustMatch(t, IsProjectFromOrg("Here"), ctx); out.Matched {
		t.Errorf("org matching must be case-sensitive")
	}
}

func TestIsProjectFromOrg_MissingProject(t *testing.T) {
	ctx := levelContext(0)
	ctx.Project = nil

	_, err := IsProjectFromOrg("here").Matches(ctx)
	if err == nil {
		t.Fatalf("expected missing-context error")
	}
	if !errors.IsMissingContext(err) {
		t.Errorf("error kind = %v, want missing_context", errors.GetKind(err))
	}
}

func TestIsStaticallyLinked(t *testing.T) {
	static := levelContext(0)
	static.Package.Linkage = model.LinkageStatic

	dynamic := levelContext(0)
	dynamic.Package.Linkage = model.LinkageDynamic

	unspecified := levelContext(0)

	m := IsStaticallyLinked()
	if out := mustMatch(t, m, static); !out.Matched {
		t.Errorf("static package should match: %s", out.Reason)
	}
	if out := mustMatch(t, m, dynamic); out.Matched {
		t.Errorf("dynamic package should not match")
	}
	if out := mustMatch(t, m, unspecified); out.Matched {
		t.Errorf("unspecified linkage should not match")
	}
}

func TestScopeAndTypeAtoms(t *testing.T) {
	ctx := levelContext(0)

	if out := mustMatch(t, IsInScope("compile"), ctx); !out.Matched {
		t.Errorf("scope atom failed: %s", out.Reason)
	}
	if out := mustMatch(t, IsInScope("test"), ctx); out.Matched {
		t.Errorf("scope atom matched wrong scope")
	}
	if out := mustMatch(t, IsType("maven"), ctx); !out.Matched {
		t.Errorf("type atom failed: %s", out.Reason)
	}
	if out := mustMatch(t, IsType("npm"), ctx); out.Matched {
		t.Errorf("type atom matched wrong type")
	}
}

func TestHasLicense(t *testing.T) {
	ctx := levelContext(0)
	ctx.Package.DeclaredLicenses = []string{"MIT"}
	ctx.Detected = []model.Finding{{License: "Apache-2.0"}}

	if out := mustMatch(t, HasLicense(license.ViewAll, "MIT"), ctx); !out.Matched {
		t.Errorf("declared MIT should match under all view: %s", out.Reason)
	}
	if out := mustMatch(t, HasLicense(license.ViewOnlyDetected, "MIT"), ctx); out.Matched {
		t.Errorf("declared MIT should not match under only_detected")
	}
	if out := mustMatch(t, HasLicense(license.ViewOnlyDetected, "Apache-2.0"), ctx); !out.Matched {
		t.Errorf("detected Apache-2.0 should match under only_detected: %s", out.Reason)
	}
}

func TestHasLicense_OrLaterFindingMatchesBaseID(t *testing.T) {
	// Scanners normalize "GPL-2.0+" to the base identifier plus the or-later
	// flag, so a rule naming the base identifier finds it.
	ctx := levelContext(0)
	ctx.Detected = []model.Finding{{License: "GPL-2.0", OrLater: true}}

	if out := mustMatch(t, HasLicense(license.ViewOnlyDetected, "GPL-2.0"), ctx); !out.Matched {
		t.Errorf("detected or-later GPL-2.0 should match the base id: %s", out.Reason)
	}
}

func TestHasAncestor(t *testing.T) {
	ctx := levelContext(2)
	ctx.Ancestors = []Ancestor{
		{Package: model.Package{ID: id("root"), Linkage: model.LinkageDynamic}},
		{Package: model.Package{ID: id("mid"), Linkage: model.LinkageStatic}},
	}

	if out := mustMatch(t, HasAncestor(IsStaticallyLinked()), ctx); !out.Matched {
		t.Errorf("static ancestor should match: %s", out.Reason)
	}
	if out := mustMatch(t, HasAncestor(IsType("npm")), ctx); out.Matched {
		t.Errorf("no npm ancestor exists")
	}

	empty := levelContext(0)
	if out := mustMatch(t, HasAncestor(IsStaticallyLinked()), empty); out.Matched {
		t.Errorf("context without ancestors should not match")
	}
}

func TestHasAncestor_SeesEdgeLinkageAndFindings(t *testing.T) {
	// The ancestor's package linkage is dynamic, but the edge it was
	// reached through is static; the edge must win, as it does for
	// directly evaluated contexts.
	ctx := levelContext(1)
	ctx.Ancestors = []Ancestor{{
		Package:  model.Package{ID: id("mid"), Linkage: model.LinkageDynamic},
		Ref:      model.PackageReference{ID: id("mid"), Linkage: model.LinkageStatic},
		Detected: []model.Finding{{License: "Apache-2.0"}},
	}}

	if out := mustMatch(t, HasAncestor(IsStaticallyLinked()), ctx); !out.Matched {
		t.Errorf("ancestor edge linkage should win: %s", out.Reason)
	}
	if out := mustMatch(t, HasAncestor(HasLicense(license.ViewOnlyDetected, "Apache-2.0")), ctx); !out.Matched {
		t.Errorf("ancestor detected findings should be visible: %s", out.Reason)
	}
}

func TestVersionSatisfies(t *testing.T) {
	m, err := VersionSatisfies(">= 1.0.0, < 2.0.0")
	if err != nil {
		t.Fatalf("VersionSatisfies rejected valid constraint: %v", err)
	}

	ctx := levelContext(0) // version 1.0.0
	if out := mustMatch(t, m, ctx); !out.Matched {
		t.Errorf("1.0.0 should satisfy the range: %s", out.Reason)
	}

	ctx.Package.ID.Version = "2.1.0"
	if out := mustMatch(t, m, ctx); out.Matched {
		t.Errorf("2.1.0 should not satisfy the range")
	}

	ctx.Package.ID.Version = "not-a-version"
	if out := mustMatch(t, m, ctx); out.Matched {
		t.Errorf("unparsable version should never match")
	}
}

func TestVersionSatisfies_InvalidConstraint(t *testing.T) {
	_, err := VersionSatisfies(">>nonsense<<")
	if err == nil {
		t.Fatalf("expected error for invalid constraint")
	}
	if !errors.IsInvalidRule(err) {
		t.Errorf("error kind = %v, want invalid_rule", errors.GetKind(err))
	}
}

func TestCombinators(t *testing.T) {
	ctx := levelContext(0)
	ctx.Package.Linkage = model.LinkageStatic

	yes := IsAtTreeLevel(0)
	no := IsAtTreeLevel(5)

	tests := []struct {
		name string
		m    Matcher
		want bool
	}{
		{"and all true", And(yes, IsStaticallyLinked()), true},
		{"and one false", And(yes, no), false},
		{"or one true", Or(no, yes), true},
		{"or all false", Or(no, IsInScope("test")), false},
		{"not true", Not(yes), false},
		{"not false", Not(no), true},
		{"nested", And(yes, Or(no, Not(no))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustMatch(t, tt.m, ctx)
			if out.Matched != tt.want {
				t.Errorf("%s = %v, want %v (%s)", tt.m, out.Matched, tt.want, out.Reason)
			}
		})
	}
}

func TestCombinators_ShortCircuit(t *testing.T) {
	calls := 0
	counting := newMatcher("counting", func(ctx *Context) (Outcome, error) {
		calls++
		return Outcome{Matched: true}, nil
	})

	ctx := levelContext(0)

	mustMatch(t, And(IsAtTreeLevel(5), counting), ctx)
	if calls != 0 {
		t.Errorf("And did not short-circuit: %d calls", calls)
	}

	mustMatch(t, Or(IsAtTreeLevel(0), counting), ctx)
	if calls != 0 {
		t.Errorf("Or did not short-circuit: %d calls", calls)
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	ctx := levelContext(0)
	ctx.Package.Linkage = model.LinkageStatic
	m := And(IsAtTreeLevel(0), IsStaticallyLinked(), Not(IsInScope("test")))

	first := mustMatch(t, m, ctx)
	for i := 0; i < 5; i++ {
		if again := mustMatch(t, m, ctx); again != first {
			t.Fatalf("matcher not idempotent: %v vs %v", again, first)
		}
	}
}

func TestCombinators_PropagateErrors(t *testing.T) {
	ctx := levelContext(0)
	ctx.Project = nil

	broken := IsProjectFromOrg("here")
	for _, m := range []Matcher{And(broken), Or(broken), Not(broken)} {
		if _, err := m.Matches(ctx); err == nil {
			t.Errorf("%s swallowed the evaluation error", m)
		}
	}
}
