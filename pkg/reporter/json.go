package reporter

import (
	"context"
	"encoding/json"
	"io"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/rules"
)

// JSONReporter writes the evaluation result as a single JSON document.
type JSONReporter struct {
	// Indent pretty-prints the output when set
	Indent bool
}

// NewJSONReporter creates a JSON reporter with indented output.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{Indent: true}
}

// Name returns the registry name of the reporter.
func (r *JSONReporter) Name() string {
	return "json"
}

// Report serializes the result to w.
func (r *JSONReporter) Report(ctx context.Context, w io.Writer, result *rules.Result) error {
	const op = "reporter.Report"

	if result == nil {
		return errors.E(op, errors.KindInvalidInput, "nil result")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return errors.E(op, errors.KindInternal, "encode result", err)
	}
	return nil
}

var _ Reporter = (*JSONReporter)(nil)
