package models

import (
	"fmt"
	"sort"
)

// Builder constructs a fresh instance of a named model. Every call
// returns independent state, so repeated runs never share stocks.
type Builder func() (*Model, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.builders["sir"] = SIR
	r.builders["inventory"] = Inventory
	r.builders["predator-prey"] = PredatorPrey
	return r
}

// Register adds or replaces a named builder.
func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

func (r *Registry) Build(name string) (*Model, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return b()
}

// Names lists all registered models, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
