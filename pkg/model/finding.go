package model

// TextLocation points at a region of a file in scanned source code.
type TextLocation struct {
	// Path of the file, relative to the scanned root
	Path string `json:"path"`

	// StartLine of the region (1-based)
	StartLine int `json:"start_line,omitempty"`

	// EndLine of the region (1-based, inclusive)
	EndLine int `json:"end_line,omitempty"`
}

// Finding is a single detected license statement produced by a scan.
// Findings are immutable once produced.
type Finding struct {
	// License is the SPDX identifier of the detected license, base form
	License string `json:"license"`

	// OrLater is set when the detected identifier carried the "+" marker
	OrLater bool `json:"or_later,omitempty"`

	// Location of the license text
	Location TextLocation `json:"location"`
}
