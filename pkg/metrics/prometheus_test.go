package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusCollector_DefaultMetrics(t *testing.T) {
	c := NewPrometheusCollector(&PrometheusConfig{RegisterDefaultMetrics: true})

	c.CounterInc(RulesEvaluatedTotal.Name, "rule", "no-gpl-static", "status", "violation")
	c.CounterAdd(ViolationsTotal.Name, 3, "severity", "error")
	c.HistogramObserve(EvaluationDuration.Name, 0.42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`licomply_rules_evaluated_total{rule="no-gpl-static",status="violation"} 1`,
		`licomply_violations_total{severity="error"} 3`,
		"licomply_evaluation_duration_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestPrometheusCollector_UnregisteredMetricIgnored(t *testing.T) {
	c := NewPrometheusCollector(&PrometheusConfig{})

	// Must not panic or register implicitly.
	c.CounterInc("licomply_never_registered_total")
	c.GaugeSet("licomply_never_registered", 1)
	c.HistogramObserve("licomply_never_registered_seconds", 1)
}

func TestPrometheusCollector_Namespace(t *testing.T) {
	c := NewPrometheusCollector(&PrometheusConfig{Namespace: "testns"})
	if err := c.Register(MetricDefinition{
		Name: "ops_total",
		Type: MetricTypeCounter,
		Help: "ops",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	c.CounterInc("ops_total")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "testns_ops_total 1") {
		t.Errorf("namespaced counter missing from output")
	}
}

func TestNopCollector(t *testing.T) {
	var c Collector = NopCollector{}
	c.CounterInc("anything")
	c.GaugeSet("anything", 1)
	c.HistogramObserve("anything", 1)
	if c.Handler() == nil {
		t.Errorf("NopCollector handler should not be nil")
	}
}
