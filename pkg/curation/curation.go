// Package curation applies manually curated metadata corrections to
// packages before license resolution. A curation targets a package by its
// version-independent coordinates plus an optional semver range and sets
// the concluded license for every matching package.
package curation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/model"
)

// Curation is one curated correction for a package.
type Curation struct {
	// Type, Namespace and Name select the target package. Matching is
	// exact and version-independent.
	Type      string `yaml:"type"`
	Namespace string `yaml:"namespace,omitempty"`
	Name      string `yaml:"name"`

	// VersionConstraint narrows the target to a semver range. Empty means
	// every version. Packages whose versions do not parse as semver are
	// never matched by a constrained curation.
	VersionConstraint string `yaml:"version,omitempty"`

	// ConcludedLicense is the SPDX expression to set on matching packages.
	ConcludedLicense string `yaml:"concluded_license"`

	// Comment documents why the curation exists.
	Comment string `yaml:"comment,omitempty"`
}

// File is the top-level curation document.
type File struct {
	Curations []Curation `yaml:"curations"`
}

// Load parses YAML curations. Defects are fatal here, mirroring rule
// definition loading: a curation with a bad constraint must never
// silently stop applying.
func Load(data []byte) ([]Curation, error) {
	const op = "curation.Load"

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.E(op, errors.KindInvalidInput, "invalid curation document", err)
	}
	for i, c := range file.Curations {
		if err := c.validate(); err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, fmt.Sprintf("curation %d", i), err)
		}
	}
	return file.Curations, nil
}

func (c Curation) validate() error {
	const op = "curation.validate"

	if c.Type == "" || c.Name == "" {
		return errors.E(op, errors.KindInvalidInput, "curation needs a package type and name")
	}
	if c.ConcludedLicense == "" {
		return errors.E(op, errors.KindInvalidInput, "curation needs a concluded license")
	}
	if c.VersionConstraint != "" {
		if _, err := semver.NewConstraint(c.VersionConstraint); err != nil {
			return errors.E(op, errors.KindInvalidInput,
				fmt.Sprintf("invalid version constraint %q", c.VersionConstraint), err)
		}
	}
	return nil
}

// matches reports whether the curation applies to the given package.
func (c Curation) matches(pkg model.Package) bool {
	id := pkg.ID
	if id.Type != c.Type || id.Namespace != c.Namespace || id.Name != c.Name {
		return false
	}
	if c.VersionConstraint == "" {
		return true
	}
	constraint, err := semver.NewConstraint(c.VersionConstraint)
	if err != nil {
		return false
	}
	version, err := semver.NewVersion(id.Version)
	if err != nil {
		return false
	}
	return constraint.Check(version)
}

// Curator applies curations to packages.
type Curator struct {
	curations []Curation
	logger    log.Logger
}

// CuratorOption configures a Curator.
type CuratorOption func(*Curator)

// WithLogger sets the curator's logger.
func WithLogger(logger log.Logger) CuratorOption {
	return func(c *Curator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCurator creates a Curator over validated curations.
func NewCurator(curations []Curation, opts ...CuratorOption) (*Curator, error) {
	for i, c := range curations {
		if err := c.validate(); err != nil {
			return nil, errors.E("curation.NewCurator", errors.KindInvalidInput,
				fmt.Sprintf("curation %d", i), err)
		}
	}
	c := &Curator{curations: curations, logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Apply returns a copy of the packages with matching curations applied.
// Curations apply in declaration order, so a later curation targeting the
// same package wins. The input slice is never mutated.
func (c *Curator) Apply(packages []model.Package) []model.Package {
	if len(c.curations) == 0 {
		return packages
	}
	curated := make([]model.Package, len(packages))
	copy(curated, packages)

	for i := range curated {
		for _, cur := range c.curations {
			if !cur.matches(curated[i]) {
				continue
			}
			c.logger.Debug("curating %s: concluded license %q", curated[i].ID, cur.ConcludedLicense)
			curated[i].ConcludedLicense = cur.ConcludedLicense
		}
	}
	return curated
}
