// Package spdxtag detects SPDX-License-Identifier tags in source files.
package spdxtag

import (
	"context"
	"strings"

	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/model"
	"github.com/licomply/toolkit/pkg/scanner"
	"github.com/licomply/toolkit/pkg/spdx"
)

const tag = "SPDX-License-Identifier:"

// Detector scans file contents for SPDX license identifier tags. Each tag
// is parsed as an SPDX expression and decomposed into one finding per
// constituent license; or-later markers become the finding's OrLater flag,
// matching how the license resolver decomposes concluded expressions.
// Malformed tags are skipped.
type Detector struct {
	logger log.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the detector's logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector creates a tag detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the registry name of the detector.
func (d *Detector) Name() string {
	return "spdxtag"
}

// Scan detects SPDX tags in the given files.
func (d *Detector) Scan(ctx context.Context, files []scanner.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		findings = append(findings, d.scanFile(file)...)
	}
	return findings, nil
}

func (d *Detector) scanFile(file scanner.File) []model.Finding {
	var findings []model.Finding

	lines := strings.Split(string(file.Content), "\n")
	for i, line := range lines {
		idx := strings.Index(line, tag)
		if idx < 0 {
			continue
		}
		raw := trimTrailer(line[idx+len(tag):])
		if raw == "" {
			continue
		}

		expr, err := spdx.Parse(raw)
		if err != nil {
			d.logger.Debug("skipping malformed tag %q in %s:%d: %v", raw, file.Path, i+1, err)
			continue
		}
		for _, leaf := range expr.Decompose() {
			findings = append(findings, model.Finding{
				License: leaf.Base(),
				OrLater: leaf.OrLater,
				Location: model.TextLocation{
					Path:      file.Path,
					StartLine: i + 1,
					EndLine:   i + 1,
				},
			})
		}
	}
	return findings
}

// trimTrailer strips comment closers that commonly follow the tag on the
// same line.
func trimTrailer(s string) string {
	for _, closer := range []string{"*/", "-->", "#>"} {
		if idx := strings.Index(s, closer); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

var _ scanner.Scanner = (*Detector)(nil)
