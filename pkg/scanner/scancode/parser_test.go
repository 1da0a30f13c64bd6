package scancode

import (
	"context"
	"testing"
)

const sampleOutput = `{
  "headers": [
    {"tool_name": "scancode-toolkit", "tool_version": "32.0.8", "output_format_version": "3.0.0"}
  ],
  "files": [
    {
      "path": "src/main.c",
      "type": "file",
      "detected_license_expression_spdx": "GPL-2.0-only",
      "license_detections": [
        {
          "license_expression_spdx": "GPL-2.0-only",
          "matches": [
            {"score": 100.0, "start_line": 3, "end_line": 12, "license_expression_spdx": "GPL-2.0-only"}
          ]
        }
      ]
    },
    {
      "path": "vendor",
      "type": "directory",
      "license_detections": []
    },
    {
      "path": "LICENSE",
      "type": "file",
      "license_detections": [
        {
          "license_expression_spdx": "Apache-2.0 AND MIT",
          "matches": []
        }
      ]
    }
  ]
}`

func TestParser_Parse(t *testing.T) {
	findings, err := NewParser().Parse(context.Background(), []byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []struct {
		license string
		path    string
		line    int
	}{
		{"GPL-2.0-only", "src/main.c", 3},
		{"Apache-2.0", "LICENSE", 0},
		{"MIT", "LICENSE", 0},
	}
	if len(findings) != len(want) {
		t.Fatalf("got %d findings, want %d: %+v", len(findings), len(want), findings)
	}
	for i, w := range want {
		f := findings[i]
		if f.License != w.license || f.Location.Path != w.path || f.Location.StartLine != w.line {
			t.Errorf("finding %d = %+v, want %+v", i, f, w)
		}
	}
}

func TestParser_CanParse(t *testing.T) {
	p := NewParser()
	if !p.CanParse([]byte(sampleOutput)) {
		t.Errorf("genuine scancode output rejected")
	}
	if p.CanParse([]byte(`{"headers": [{"tool_name": "trivy"}], "files": []}`)) {
		t.Errorf("foreign tool output accepted")
	}
	if p.CanParse([]byte("not json")) {
		t.Errorf("non-JSON accepted")
	}
}

func TestParser_InvalidDocument(t *testing.T) {
	if _, err := NewParser().Parse(context.Background(), []byte("not json")); err == nil {
		t.Errorf("invalid document should fail")
	}
}

func TestParser_NormalizesOrLater(t *testing.T) {
	doc := `{
	  "headers": [{"tool_name": "scancode-toolkit"}],
	  "files": [
	    {"path": "COPYING", "type": "file", "license_detections": [
	      {"license_expression_spdx": "GPL-2.0+ AND MIT", "matches": []}
	    ]}
	  ]
	}`
	findings, err := NewParser().Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(findings), findings)
	}
	if findings[0].License != "GPL-2.0" || !findings[0].OrLater {
		t.Errorf("or-later finding = %q (or_later %v), want GPL-2.0 with flag",
			findings[0].License, findings[0].OrLater)
	}
	if findings[1].License != "MIT" || findings[1].OrLater {
		t.Errorf("plain finding = %q (or_later %v)", findings[1].License, findings[1].OrLater)
	}
}

func TestParser_SkipsMalformedExpressions(t *testing.T) {
	doc := `{
	  "headers": [{"tool_name": "scancode-toolkit"}],
	  "files": [
	    {"path": "a", "type": "file", "license_detections": [
	      {"license_expression_spdx": "NOT (A VALID", "matches": []}
	    ]}
	  ]
	}`
	findings, err := NewParser().Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("malformed expression produced findings: %+v", findings)
	}
}
