// Package model defines the resolved analysis data model shared by the
// license resolver, the rule engine, and their collaborators.
package model

import (
	"fmt"
	"strings"
)

// Identifier uniquely identifies a project or package.
// Type is the package manager or project type (e.g. "Maven", "NPM", "Go"),
// Namespace the organization or group segment, Name the package name and
// Version the exact version.
type Identifier struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
}

// NewIdentifier creates an Identifier from its four segments.
func NewIdentifier(pkgType, namespace, name, version string) Identifier {
	return Identifier{Type: pkgType, Namespace: namespace, Name: name, Version: version}
}

// ParseIdentifier parses the "type:namespace:name:version" coordinate form.
// Trailing empty segments may be omitted.
func ParseIdentifier(s string) (Identifier, error) {
	if strings.TrimSpace(s) == "" {
		return Identifier{}, fmt.Errorf("empty identifier")
	}
	parts := strings.SplitN(s, ":", 4)
	id := Identifier{Type: parts[0]}
	if len(parts) > 1 {
		id.Namespace = parts[1]
	}
	if len(parts) > 2 {
		id.Name = parts[2]
	}
	if len(parts) > 3 {
		id.Version = parts[3]
	}
	return id, nil
}

// String returns the coordinate form "type:namespace:name:version".
func (id Identifier) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", id.Type, id.Namespace, id.Name, id.Version)
}

// Organization returns the namespace segment, the organization a project
// or package belongs to.
func (id Identifier) Organization() string {
	return id.Namespace
}

// IsEmpty returns true if all segments are empty.
func (id Identifier) IsEmpty() bool {
	return id.Type == "" && id.Namespace == "" && id.Name == "" && id.Version == ""
}

// WithoutVersion returns a copy of the identifier with the version cleared.
// Useful for version-independent lookups such as curation targets.
func (id Identifier) WithoutVersion() Identifier {
	id.Version = ""
	return id
}

// Equals reports whether two identifiers denote the same coordinates.
func (id Identifier) Equals(other Identifier) bool {
	return id == other
}
