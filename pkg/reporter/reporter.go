// Package reporter serializes evaluation results for machine consumption.
// Reporters write to an io.Writer the caller provides; the toolkit never
// decides where output goes. Lookup runs through an explicit Registry.
package reporter

import (
	"context"
	"io"
	"sync"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/rules"
)

// Reporter writes one evaluation result to a writer.
type Reporter interface {
	// Name returns the reporter's registry name.
	Name() string

	// Report serializes the result to w.
	Report(ctx context.Context, w io.Writer, result *rules.Result) error
}

// Factory constructs a Reporter instance.
type Factory func() Reporter

// Registry maps names to reporter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in reporters registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("json", func() Reporter { return NewJSONReporter() })
	return r
}

// Register adds a reporter factory under a name. Later registrations with
// the same name win.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New instantiates a registered reporter by name.
func (r *Registry) New(name string) (Reporter, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.E("reporter.New", errors.KindNotFound, "unknown reporter "+name)
	}
	return factory(), nil
}

// Names returns all registered reporter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
