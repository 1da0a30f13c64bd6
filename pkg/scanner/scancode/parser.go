package scancode

import (
	"context"
	"encoding/json"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
	"github.com/licomply/toolkit/pkg/model"
	"github.com/licomply/toolkit/pkg/scanner"
	"github.com/licomply/toolkit/pkg/spdx"
)

const toolName = "scancode-toolkit"

// Parser converts ScanCode JSON output into findings. Each detection match
// yields one finding per constituent license of its SPDX expression, with
// or-later markers carried as the finding's OrLater flag; matches without
// line information fall back to the detection expression spanning the whole
// file entry.
type Parser struct {
	logger log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the parser's logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a ScanCode output parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the registry name of the parser.
func (p *Parser) Name() string {
	return "scancode"
}

// CanParse reports whether the data looks like ScanCode output.
func (p *Parser) CanParse(data []byte) bool {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return false
	}
	for _, h := range out.Headers {
		if h.ToolName == toolName {
			return true
		}
	}
	return false
}

// Parse converts ScanCode JSON output into findings.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.Finding, error) {
	const op = "scancode.Parse"

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.E(op, errors.KindInvalidInput, "invalid scancode document", err)
	}

	var findings []model.Finding
	for _, file := range out.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.Type != "" && file.Type != "file" {
			continue
		}
		for _, detection := range file.LicenseDetections {
			findings = append(findings, p.convertDetection(file, detection)...)
		}
	}
	return findings, nil
}

func (p *Parser) convertDetection(file File, detection LicenseDetection) []model.Finding {
	var findings []model.Finding

	for _, match := range detection.Matches {
		raw := match.ExpressionSPDX
		if raw == "" {
			raw = detection.ExpressionSPDX
		}
		findings = append(findings, p.convert(raw, file.Path, match.StartLine, match.EndLine)...)
	}
	if len(detection.Matches) == 0 {
		findings = append(findings, p.convert(detection.ExpressionSPDX, file.Path, 0, 0)...)
	}
	return findings
}

func (p *Parser) convert(raw, path string, startLine, endLine int) []model.Finding {
	if raw == "" {
		return nil
	}
	expr, err := spdx.Parse(raw)
	if err != nil {
		p.logger.Debug("skipping malformed expression %q in %s: %v", raw, path, err)
		return nil
	}

	leaves := expr.Decompose()
	findings := make([]model.Finding, 0, len(leaves))
	for _, leaf := range leaves {
		findings = append(findings, model.Finding{
			License: leaf.Base(),
			OrLater: leaf.OrLater,
			Location: model.TextLocation{
				Path:      path,
				StartLine: startLine,
				EndLine:   endLine,
			},
		})
	}
	return findings
}

var _ scanner.Parser = (*Parser)(nil)
