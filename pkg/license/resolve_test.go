package license

import (
	"reflect"
	"sort"
	"testing"

	"github.com/licomply/toolkit/pkg/model"
)

func mkPackage(declared []string, concluded string) model.Package {
	return model.Package{
		ID:               model.NewIdentifier("maven", "org.example", "lib", "1.0.0"),
		DeclaredLicenses: declared,
		ConcludedLicense: concluded,
	}
}

func mkFindings(licenses ...string) []model.Finding {
	findings := make([]model.Finding, 0, len(licenses))
	for i, lic := range licenses {
		findings = append(findings, model.Finding{
			License:  lic,
			Location: model.TextLocation{Path: "LICENSE", StartLine: i + 1, EndLine: i + 1},
		})
	}
	return findings
}

// asSet drops ordering so tests compare resolved pairs as sets.
func asSet(in []ResolvedLicense) map[ResolvedLicense]bool {
	set := make(map[ResolvedLicense]bool, len(in))
	for _, rl := range in {
		set[rl] = true
	}
	return set
}

func TestResolve_NoEvidence(t *testing.T) {
	pkg := mkPackage(nil, "")

	for _, view := range AllViews() {
		if got := Resolve(view, pkg, nil); len(got) != 0 {
			t.Errorf("view %s: got %v for package without evidence, want empty", view, got)
		}
	}
}

func TestResolve_OnlyDetectedEvidence(t *testing.T) {
	pkg := mkPackage(nil, "")
	detected := mkFindings("LicenseRef-a", "LicenseRef-b")

	want := asSet([]ResolvedLicense{
		{License: "LicenseRef-a", Source: SourceDetected},
		{License: "LicenseRef-b", Source: SourceDetected},
	})

	returnsDetected := []View{
		ViewAll,
		ViewConcludedOrRest,
		ViewConcludedOrDeclaredOrDetected,
		ViewConcludedOrDetected,
		ViewOnlyDetected,
	}
	for _, view := range returnsDetected {
		got := asSet(Resolve(view, pkg, detected))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("view %s: got %v, want %v", view, got, want)
		}
	}

	returnsEmpty := []View{ViewOnlyConcluded, ViewOnlyDeclared}
	for _, view := range returnsEmpty {
		if got := Resolve(view, pkg, detected); len(got) != 0 {
			t.Errorf("view %s: got %v, want empty", view, got)
		}
	}
}

func TestResolve_ConcludedWins(t *testing.T) {
	pkg := mkPackage([]string{"MIT"}, "Apache-2.0 AND BSD-3-Clause")
	detected := mkFindings("LicenseRef-scan")

	want := asSet([]ResolvedLicense{
		{License: "Apache-2.0", Source: SourceConcluded},
		{License: "BSD-3-Clause", Source: SourceConcluded},
	})

	for _, view := range []View{ViewConcludedOrRest, ViewConcludedOrDeclaredOrDetected, ViewConcludedOrDetected} {
		got := asSet(Resolve(view, pkg, detected))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("view %s: got %v, want %v", view, got, want)
		}
	}
}

func TestResolve_All_FullUnion(t *testing.T) {
	pkg := mkPackage([]string{"MIT", "Apache-2.0"}, "GPL-2.0-only OR MIT")
	detected := mkFindings("LicenseRef-a", "MIT")

	got := Resolve(ViewAll, pkg, detected)

	// |concluded'| + |declared| + |detected|: the same license under
	// different sources is kept, dedup happens only per identical pair.
	if len(got) != 6 {
		t.Fatalf("ViewAll returned %d pairs, want 6: %v", len(got), got)
	}

	want := asSet([]ResolvedLicense{
		{License: "GPL-2.0-only", Source: SourceConcluded},
		{License: "MIT", Source: SourceConcluded},
		{License: "MIT", Source: SourceDeclared},
		{License: "Apache-2.0", Source: SourceDeclared},
		{License: "LicenseRef-a", Source: SourceDetected},
		{License: "MIT", Source: SourceDetected},
	})
	if !reflect.DeepEqual(asSet(got), want) {
		t.Errorf("ViewAll = %v, want %v", got, want)
	}
}

func TestResolve_All_DedupesIdenticalPairs(t *testing.T) {
	pkg := mkPackage([]string{"MIT", "MIT"}, "")
	detected := mkFindings("MIT", "MIT")

	got := Resolve(ViewAll, pkg, detected)
	want := []ResolvedLicense{
		{License: "MIT", Source: SourceDeclared},
		{License: "MIT", Source: SourceDetected},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ViewAll = %v, want %v", got, want)
	}
}

func TestResolve_DeclaredFallback(t *testing.T) {
	// Concrete scenario: declared {Apache-2.0, MIT}, no conclusion,
	// detected {LicenseRef-a, LicenseRef-b}.
	pkg := mkPackage([]string{"Apache-2.0", "MIT"}, "")
	detected := mkFindings("LicenseRef-a", "LicenseRef-b")

	got := asSet(Resolve(ViewConcludedOrDeclaredOrDetected, pkg, detected))
	want := asSet([]ResolvedLicense{
		{License: "Apache-2.0", Source: SourceDeclared},
		{License: "MIT", Source: SourceDeclared},
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("waterfall view = %v, want %v", got, want)
	}

	gotDetected := asSet(Resolve(ViewOnlyDetected, pkg, detected))
	wantDetected := asSet([]ResolvedLicense{
		{License: "LicenseRef-a", Source: SourceDetected},
		{License: "LicenseRef-b", Source: SourceDetected},
	})
	if !reflect.DeepEqual(gotDetected, wantDetected) {
		t.Errorf("only_detected = %v, want %v", gotDetected, wantDetected)
	}
}

func TestResolve_ConcludedOrRest_Union(t *testing.T) {
	pkg := mkPackage([]string{"MIT"}, "")
	detected := mkFindings("LicenseRef-a")

	got := asSet(Resolve(ViewConcludedOrRest, pkg, detected))
	want := asSet([]ResolvedLicense{
		{License: "MIT", Source: SourceDeclared},
		{License: "LicenseRef-a", Source: SourceDetected},
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("concluded_or_rest = %v, want %v", got, want)
	}
}

func TestResolve_ConcludedOrDetected_IgnoresDeclared(t *testing.T) {
	pkg := mkPackage([]string{"MIT"}, "")
	got := Resolve(ViewConcludedOrDetected, pkg, nil)
	if len(got) != 0 {
		t.Errorf("concluded_or_detected = %v, want empty (declared never considered)", got)
	}
}

func TestResolve_MalformedConcludedFallsThrough(t *testing.T) {
	pkg := mkPackage([]string{"MIT"}, "NOT (A VALID EXPRESSION")
	detected := mkFindings("LicenseRef-a")

	got := asSet(Resolve(ViewConcludedOrDeclaredOrDetected, pkg, detected))
	want := asSet([]ResolvedLicense{{License: "MIT", Source: SourceDeclared}})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("malformed conclusion not treated as absent: got %v, want %v", got, want)
	}

	if got := Resolve(ViewOnlyConcluded, pkg, detected); len(got) != 0 {
		t.Errorf("only_concluded = %v, want empty for malformed conclusion", got)
	}
}

func TestResolve_OrLaterDecomposition(t *testing.T) {
	pkg := mkPackage(nil, "GPL-2.0+")

	got := Resolve(ViewOnlyConcluded, pkg, nil)
	want := []ResolvedLicense{{License: "GPL-2.0", OrLater: true, Source: SourceConcluded}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GPL-2.0+ decomposed to %v, want %v", got, want)
	}
}

func TestResolve_OrLaterCongruentAcrossSources(t *testing.T) {
	// A concluded GPL-2.0+ and a detected GPL-2.0+ must resolve to the same
	// (base identifier, or-later) shape, differing only in source.
	pkg := mkPackage(nil, "GPL-2.0+")
	detected := []model.Finding{{License: "GPL-2.0", OrLater: true}}

	got := Resolve(ViewAll, pkg, detected)
	want := []ResolvedLicense{
		{License: "GPL-2.0", OrLater: true, Source: SourceConcluded},
		{License: "GPL-2.0", OrLater: true, Source: SourceDetected},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ViewAll = %v, want %v", got, want)
	}
}

func TestResolve_BlankIdentifiersNeverEmitted(t *testing.T) {
	pkg := mkPackage([]string{"", "  ", "MIT"}, "")
	detected := []model.Finding{{License: ""}, {License: "Apache-2.0"}}

	for _, rl := range Resolve(ViewAll, pkg, detected) {
		if rl.License == "" || rl.License == "  " {
			t.Errorf("blank license emitted: %v", rl)
		}
	}
}

func TestResolve_DeterministicOrder(t *testing.T) {
	pkg := mkPackage([]string{"MIT", "Apache-2.0", "BSD-3-Clause"}, "")
	detected := mkFindings("LicenseRef-z", "LicenseRef-a")

	first := Resolve(ViewAll, pkg, detected)
	for i := 0; i < 10; i++ {
		if again := Resolve(ViewAll, pkg, detected); !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution order not deterministic: %v vs %v", first, again)
		}
	}
	if !sort.SliceIsSorted(first, func(i, j int) bool {
		if first[i].License != first[j].License {
			return first[i].License < first[j].License
		}
		return first[i].Source < first[j].Source
	}) {
		t.Errorf("result not sorted: %v", first)
	}
}

func TestViewFromString(t *testing.T) {
	for _, view := range AllViews() {
		got, err := ViewFromString(string(view))
		if err != nil {
			t.Errorf("ViewFromString(%q) failed: %v", view, err)
		}
		if got != view {
			t.Errorf("ViewFromString(%q) = %q", view, got)
		}
	}

	if _, err := ViewFromString("nonsense"); err == nil {
		t.Errorf("ViewFromString accepted unknown view")
	}
}
