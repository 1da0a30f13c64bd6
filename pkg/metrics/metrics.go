// Package metrics provides metrics collection for the toolkit with a
// Prometheus-backed implementation.
package metrics

import (
	"net/http"
)

// =============================================================================
// Metrics Interface
// =============================================================================

// Collector is the interface for collecting metrics. Implement it to use a
// custom backend; a nil-safe no-op is available as NopCollector.
type Collector interface {
	// Counter operations
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)

	// Gauge operations
	GaugeSet(name string, value float64, labels ...string)
	GaugeInc(name string, labels ...string)
	GaugeDec(name string, labels ...string)

	// Histogram operations
	HistogramObserve(name string, value float64, labels ...string)

	// Handler returns an HTTP handler for the metrics endpoint
	Handler() http.Handler
}

// MetricType represents the type of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// MetricDefinition defines a metric with its metadata.
type MetricDefinition struct {
	Name    string     `json:"name"`
	Type    MetricType `json:"type"`
	Help    string     `json:"help"`
	Labels  []string   `json:"labels,omitempty"`
	Buckets []float64  `json:"buckets,omitempty"` // For histograms
}

// =============================================================================
// Default Metrics - Standard metrics of the compliance toolkit
// =============================================================================

var (
	// Rule evaluation metrics
	RulesEvaluatedTotal = MetricDefinition{
		Name:   "licomply_rules_evaluated_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of (rule, context) evaluations",
		Labels: []string{"rule", "status"},
	}
	ViolationsTotal = MetricDefinition{
		Name:   "licomply_violations_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of policy violations emitted",
		Labels: []string{"severity"},
	}
	EvaluationDuration = MetricDefinition{
		Name:    "licomply_evaluation_duration_seconds",
		Type:    MetricTypeHistogram,
		Help:    "Duration of full rule evaluation runs in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}

	// Scanner metrics
	ScannerFindingsTotal = MetricDefinition{
		Name:   "licomply_scanner_findings_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of license findings produced by scanners",
		Labels: []string{"scanner"},
	}

	// Storage metrics
	StorageOperationsTotal = MetricDefinition{
		Name:   "licomply_storage_operations_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of scan storage operations",
		Labels: []string{"operation", "status"},
	}

	// VCS provider metrics
	VCSRequestsTotal = MetricDefinition{
		Name:   "licomply_vcs_requests_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of VCS metadata requests",
		Labels: []string{"provider", "status"},
	}
)

// DefaultDefinitions returns all standard toolkit metrics.
func DefaultDefinitions() []MetricDefinition {
	return []MetricDefinition{
		RulesEvaluatedTotal,
		ViolationsTotal,
		EvaluationDuration,
		ScannerFindingsTotal,
		StorageOperationsTotal,
		VCSRequestsTotal,
	}
}

// =============================================================================
// No-op Collector
// =============================================================================

// NopCollector discards all metrics.
type NopCollector struct{}

func (NopCollector) CounterInc(name string, labels ...string)                {}
func (NopCollector) CounterAdd(name string, value float64, labels ...string) {}
func (NopCollector) GaugeSet(name string, value float64, labels ...string)   {}
func (NopCollector) GaugeInc(name string, labels ...string)                  {}
func (NopCollector) GaugeDec(name string, labels ...string)                  {}
func (NopCollector) HistogramObserve(name string, value float64, labels ...string) {
}
func (NopCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}

var _ Collector = NopCollector{}
