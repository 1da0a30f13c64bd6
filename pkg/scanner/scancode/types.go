// Package scancode parses ScanCode Toolkit JSON output into license
// findings. The parser consumes output produced elsewhere; it never runs
// the tool.
package scancode

// Output is the top-level structure of a ScanCode JSON document
// (output format version 3, ScanCode Toolkit v32).
type Output struct {
	Headers []Header `json:"headers"`
	Files   []File   `json:"files"`
}

// Header identifies the producing tool.
type Header struct {
	ToolName            string `json:"tool_name"`
	ToolVersion         string `json:"tool_version"`
	OutputFormatVersion string `json:"output_format_version"`
}

// File is one scanned file entry.
type File struct {
	Path              string             `json:"path"`
	Type              string             `json:"type"`
	DetectedSPDX      string             `json:"detected_license_expression_spdx"`
	LicenseDetections []LicenseDetection `json:"license_detections"`
}

// LicenseDetection is one license detected in a file.
type LicenseDetection struct {
	ExpressionSPDX string  `json:"license_expression_spdx"`
	Matches        []Match `json:"matches"`
}

// Match is one text region supporting a detection.
type Match struct {
	Score          float64 `json:"score"`
	StartLine      int     `json:"start_line"`
	EndLine        int     `json:"end_line"`
	ExpressionSPDX string  `json:"license_expression_spdx"`
}
