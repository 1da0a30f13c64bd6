package model

// Linkage describes how a dependency is linked into its consumer.
type Linkage string

const (
	// LinkageUnspecified means no linkage information is available.
	LinkageUnspecified Linkage = ""

	// LinkageStatic marks a statically linked dependency.
	LinkageStatic Linkage = "static"

	// LinkageDynamic marks a dynamically linked dependency.
	LinkageDynamic Linkage = "dynamic"
)

// RemoteArtifact points at a downloadable artifact with its checksum.
type RemoteArtifact struct {
	URL           string `json:"url,omitempty"`
	HashValue     string `json:"hash_value,omitempty"`
	HashAlgorithm string `json:"hash_algorithm,omitempty"`
}

// VCSInfo describes the version control origin of a package's source code.
type VCSInfo struct {
	// Type of the VCS, e.g. "git"
	Type string `json:"type,omitempty"`

	// URL of the repository
	URL string `json:"url,omitempty"`

	// Revision (commit SHA, tag) the package was built from
	Revision string `json:"revision,omitempty"`

	// Path inside the repository, for monorepos
	Path string `json:"path,omitempty"`
}

// Package is the metadata of a single software package as produced by the
// analyzer subsystem, optionally amended by curations.
type Package struct {
	// ID uniquely identifies the package
	ID Identifier `json:"id"`

	// DeclaredLicenses as stated in the package manifest
	DeclaredLicenses []string `json:"declared_licenses,omitempty"`

	// ConcludedLicense is the curated SPDX expression overriding declared
	// and detected licenses. Empty if no conclusion was made.
	ConcludedLicense string `json:"concluded_license,omitempty"`

	// Description of the package
	Description string `json:"description,omitempty"`

	// Homepage URL
	Homepage string `json:"homepage,omitempty"`

	// BinaryArtifact is the built artifact location
	BinaryArtifact RemoteArtifact `json:"binary_artifact,omitempty"`

	// SourceArtifact is the source archive location
	SourceArtifact RemoteArtifact `json:"source_artifact,omitempty"`

	// VCS origin of the source code
	VCS VCSInfo `json:"vcs,omitempty"`

	// Linkage of this package into its consumers
	Linkage Linkage `json:"linkage,omitempty"`
}

// PackageReference is an edge in the dependency graph: the depended-upon
// package plus its own sub-dependencies, forming a tree.
type PackageReference struct {
	// ID of the depended-upon package
	ID Identifier `json:"id"`

	// Linkage of this particular dependency edge, overriding the
	// package-level linkage when set
	Linkage Linkage `json:"linkage,omitempty"`

	// Dependencies of the referenced package, in manifest order
	Dependencies []PackageReference `json:"dependencies,omitempty"`
}

// Scope is a named group of dependencies within a project, e.g. "compile"
// or "test".
type Scope struct {
	Name string `json:"name"`

	// Dependencies are the scope's root package references, in manifest order
	Dependencies []PackageReference `json:"dependencies,omitempty"`
}

// Project is a software project under analysis with its dependency scopes.
type Project struct {
	// ID uniquely identifies the project
	ID Identifier `json:"id"`

	// DefinitionFilePath is the manifest this project was read from
	DefinitionFilePath string `json:"definition_file_path,omitempty"`

	// DeclaredLicenses as stated in the project manifest
	DeclaredLicenses []string `json:"declared_licenses,omitempty"`

	// VCS origin of the project
	VCS VCSInfo `json:"vcs,omitempty"`

	// Scopes group the project's dependencies, in manifest order
	Scopes []Scope `json:"scopes,omitempty"`
}
