package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/model"
	"github.com/licomply/toolkit/pkg/rules"
)

func sampleResult() *rules.Result {
	return &rules.Result{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Violations: []rules.Violation{
			{
				ID:       "v-1",
				Rule:     "no-gpl-static",
				Package:  model.NewIdentifier("maven", "org.example", "lib", "1.0.0"),
				Scope:    "compile",
				Level:    1,
				Message:  "statically linked GPL dependency",
				Severity: rules.SeverityError,
			},
		},
	}
}

func TestJSONReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter().Report(context.Background(), &buf, sampleResult()); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var decoded rules.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("run id = %q", decoded.RunID)
	}
	if len(decoded.Violations) != 1 || decoded.Violations[0].Rule != "no-gpl-static" {
		t.Errorf("violations = %+v", decoded.Violations)
	}
	if decoded.Violations[0].Severity != rules.SeverityError {
		t.Errorf("severity = %q", decoded.Violations[0].Severity)
	}
}

func TestJSONReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter().Report(context.Background(), &buf, nil); err == nil {
		t.Errorf("nil result should be rejected")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	rep, err := r.New("json")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if rep.Name() != "json" {
		t.Errorf("reporter name = %q", rep.Name())
	}

	_, err = r.New("sarif")
	if !errors.IsNotFound(err) {
		t.Errorf("unknown reporter should be not_found, got %v", err)
	}
}
