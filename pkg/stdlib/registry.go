// Package stdlib provides the s0 native-procedure registry.
package stdlib

import (
	"sort"

	"github.com/s0lang/s0/pkg/evaluator"
)

// Fn represents a native procedure. Execute receives the evaluated
// arguments in call order; arity and argument typing are the
// procedure's own concern, not the evaluator's. Returned
// *evaluator.S0RuntimeError values propagate to the caller unchanged.
type Fn struct {
	Name    string
	Execute func(args []evaluator.S0Value) (evaluator.S0Value, error)
}

// Registry holds registered native procedures.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a native procedure to the registry.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a native procedure by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered native procedures.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
