// Package scanner defines the license scanner plugin surface.
//
// Scanners detect license evidence in file contents handed to them; they
// never shell out to external tools. Output parsers convert pre-produced
// output of external scanners into findings. Both are looked up through an
// explicit Registry the caller constructs and passes around.
package scanner

import (
	"context"
	"sync"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/metrics"
	"github.com/licomply/toolkit/pkg/model"
)

// File is one in-memory file presented to a scanner.
type File struct {
	// Path of the file relative to the scanned tree
	Path string

	// Content is the full file content
	Content []byte
}

// Scanner detects license findings in file contents.
type Scanner interface {
	// Name returns the scanner's registry name.
	Name() string

	// Scan detects license findings in the given files.
	Scan(ctx context.Context, files []File) ([]model.Finding, error)
}

// Parser converts the pre-produced output of an external scan tool into
// findings.
type Parser interface {
	// Name returns the parser's registry name.
	Name() string

	// CanParse reports whether the data looks like this parser's format.
	CanParse(data []byte) bool

	// Parse converts raw scanner output into findings.
	Parse(ctx context.Context, data []byte) ([]model.Finding, error)
}

// Factory constructs a Scanner instance.
type Factory func() Scanner

// ParserFactory constructs a Parser instance.
type ParserFactory func() Parser

// Registry maps names to scanner and parser factories. Registration is
// explicit; there is no implicit discovery.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Factory
	parsers  map[string]ParserFactory

	collector metrics.Collector
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCollector sets the metrics collector counting scanner findings.
func WithCollector(collector metrics.Collector) RegistryOption {
	return func(r *Registry) {
		if collector != nil {
			r.collector = collector
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		scanners: make(map[string]Factory),
		parsers:  make(map[string]ParserFactory),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterScanner adds a scanner factory under a name. Later registrations
// with the same name win.
func (r *Registry) RegisterScanner(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanners[name] = factory
}

// RegisterParser adds a parser factory under a name.
func (r *Registry) RegisterParser(name string, factory ParserFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[name] = factory
}

// NewScanner instantiates a registered scanner by name.
func (r *Registry) NewScanner(name string) (Scanner, error) {
	r.mu.RLock()
	factory, ok := r.scanners[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.E("scanner.NewScanner", errors.KindNotFound, "unknown scanner "+name)
	}
	return factory(), nil
}

// NewParser instantiates a registered parser by name.
func (r *Registry) NewParser(name string) (Parser, error) {
	r.mu.RLock()
	factory, ok := r.parsers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.E("scanner.NewParser", errors.KindNotFound, "unknown parser "+name)
	}
	return factory(), nil
}

// Scanners returns all registered scanner names.
func (r *Registry) Scanners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	return names
}

// Parsers returns all registered parser names.
func (r *Registry) Parsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}

// Run instantiates a scanner by name, scans the files and counts findings.
func (r *Registry) Run(ctx context.Context, name string, files []File) ([]model.Finding, error) {
	s, err := r.NewScanner(name)
	if err != nil {
		return nil, err
	}
	findings, err := s.Scan(ctx, files)
	if err != nil {
		return nil, err
	}
	if r.collector != nil {
		r.collector.CounterAdd(metrics.ScannerFindingsTotal.Name, float64(len(findings)),
			"scanner", name)
	}
	return findings, nil
}
