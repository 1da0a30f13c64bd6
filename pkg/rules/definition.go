package rules

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/license"
)

// Rule definitions are declarative YAML compiled down to the matcher
// combinator tree. Example:
//
//	rules:
//	  - name: no-gpl-static
//	    severity: error
//	    message: statically linked GPL dependency
//	    match:
//	      all:
//	        - statically_linked: true
//	        - license:
//	            view: concluded_or_declared_or_detected
//	            id: GPL-2.0-only
//
// Referencing an unknown view, atom or severity fails at load time, before
// any evaluation begins.

// DefinitionFile is the top-level rule definition document.
type DefinitionFile struct {
	Rules []RuleDefinition `yaml:"rules"`
}

// RuleDefinition is one declarative rule.
type RuleDefinition struct {
	Name     string      `yaml:"name"`
	Severity string      `yaml:"severity"`
	Message  string      `yaml:"message,omitempty"`
	Require  bool        `yaml:"require,omitempty"`
	Match    *MatcherDef `yaml:"match"`
}

// LicenseDef parameterizes the license atom.
type LicenseDef struct {
	View string `yaml:"view"`
	ID   string `yaml:"id"`
}

// MatcherDef is one node of the declarative matcher tree. Exactly one
// field must be set per node.
type MatcherDef struct {
	All []*MatcherDef `yaml:"all,omitempty"`
	Any []*MatcherDef `yaml:"any,omitempty"`
	Not *MatcherDef   `yaml:"not,omitempty"`

	TreeLevel        *int        `yaml:"tree_level,omitempty"`
	ProjectOrg       *string     `yaml:"project_org,omitempty"`
	StaticallyLinked *bool       `yaml:"statically_linked,omitempty"`
	Scope            *string     `yaml:"scope,omitempty"`
	PackageType      *string     `yaml:"package_type,omitempty"`
	Ancestor         *MatcherDef `yaml:"ancestor,omitempty"`
	License          *LicenseDef `yaml:"license,omitempty"`
	Version          *string     `yaml:"version,omitempty"`
}

// LoadDefinitions parses YAML rule definitions and compiles them into
// evaluable rules. Any configuration defect is fatal here.
func LoadDefinitions(data []byte) ([]Rule, error) {
	const op = "rules.LoadDefinitions"

	// KnownFields makes an unknown atom name a load-time error instead of
	// a silently empty matcher node.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file DefinitionFile
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.E(op, errors.KindInvalidRule, "invalid rule definition document", err)
	}
	if len(file.Rules) == 0 {
		return nil, errors.E(op, errors.KindInvalidRule, "no rules defined")
	}

	compiled := make([]Rule, 0, len(file.Rules))
	for i, def := range file.Rules {
		if def.Name == "" {
			return nil, errors.E(op, errors.KindInvalidRule, fmt.Sprintf("rule %d has no name", i))
		}
		severity, err := SeverityFromString(def.Severity)
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidRule,
				fmt.Sprintf("rule %q: invalid severity %q", def.Name, def.Severity))
		}
		if def.Match == nil {
			return nil, errors.E(op, errors.KindInvalidRule, fmt.Sprintf("rule %q has no match clause", def.Name))
		}
		matcher, err := CompileMatcher(def.Match)
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidRule, fmt.Sprintf("rule %q", def.Name), err)
		}
		compiled = append(compiled, Rule{
			Name:     def.Name,
			Matcher:  matcher,
			Severity: severity,
			Message:  def.Message,
			Require:  def.Require,
		})
	}
	return compiled, nil
}

// CompileMatcher compiles one declarative matcher node.
func CompileMatcher(def *MatcherDef) (Matcher, error) {
	const op = "rules.CompileMatcher"

	if def == nil {
		return nil, errors.E(op, errors.KindInvalidRule, "empty matcher node")
	}
	if n := countSet(def); n != 1 {
		return nil, errors.E(op, errors.KindInvalidRule,
			fmt.Sprintf("matcher node must set exactly one atom or combinator, got %d", n))
	}

	switch {
	case def.All != nil:
		sub, err := compileList(def.All)
		if err != nil {
			return nil, err
		}
		return And(sub...), nil

	case def.Any != nil:
		sub, err := compileList(def.Any)
		if err != nil {
			return nil, err
		}
		return Or(sub...), nil

	case def.Not != nil:
		inner, err := CompileMatcher(def.Not)
		if err != nil {
			return nil, err
		}
		return Not(inner), nil

	case def.TreeLevel != nil:
		return IsAtTreeLevel(*def.TreeLevel), nil

	case def.ProjectOrg != nil:
		return IsProjectFromOrg(*def.ProjectOrg), nil

	case def.StaticallyLinked != nil:
		if *def.StaticallyLinked {
			return IsStaticallyLinked(), nil
		}
		return Not(IsStaticallyLinked()), nil

	case def.Scope != nil:
		return IsInScope(*def.Scope), nil

	case def.PackageType != nil:
		return IsType(*def.PackageType), nil

	case def.Ancestor != nil:
		inner, err := CompileMatcher(def.Ancestor)
		if err != nil {
			return nil, err
		}
		return HasAncestor(inner), nil

	case def.License != nil:
		view, err := license.ViewFromString(def.License.View)
		if err != nil {
			return nil, err
		}
		if def.License.ID == "" {
			return nil, errors.E(op, errors.KindInvalidRule, "license atom needs an id")
		}
		return HasLicense(view, def.License.ID), nil

	case def.Version != nil:
		return VersionSatisfies(*def.Version)

	default:
		return nil, errors.ErrUnknownAtom
	}
}

func compileList(defs []*MatcherDef) ([]Matcher, error) {
	if len(defs) == 0 {
		return nil, errors.E("rules.CompileMatcher", errors.KindInvalidRule, "empty combinator list")
	}
	matchers := make([]Matcher, 0, len(defs))
	for _, def := range defs {
		m, err := CompileMatcher(def)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func countSet(def *MatcherDef) int {
	n := 0
	if def.All != nil {
		n++
	}
	if def.Any != nil {
		n++
	}
	if def.Not != nil {
		n++
	}
	if def.TreeLevel != nil {
		n++
	}
	if def.ProjectOrg != nil {
		n++
	}
	if def.StaticallyLinked != nil {
		n++
	}
	if def.Scope != nil {
		n++
	}
	if def.PackageType != nil {
		n++
	}
	if def.Ancestor != nil {
		n++
	}
	if def.License != nil {
		n++
	}
	if def.Version != nil {
		n++
	}
	return n
}
