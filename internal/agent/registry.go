package agent

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/vozlegal/intake/internal/errors"
)

// Registry is the static lookup table from agent type to definition. It is
// populated once at startup and read-only afterwards, so it may be shared
// across goroutines without locking.
type Registry struct {
	order       []Type
	definitions map[Type]*Definition
}

// NewRegistry builds a registry from the given definitions. Every type may
// appear at most once.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		definitions: make(map[Type]*Definition, len(defs)),
	}

	for i := range defs {
		def := defs[i]
		if def.Type == "" {
			return nil, errors.InvalidInput("agent definition missing type")
		}
		if _, exists := r.definitions[def.Type]; exists {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate agent definition: %s", def.Type))
		}
		r.order = append(r.order, def.Type)
		r.definitions[def.Type] = &def
	}

	slog.Debug("Agent registry built", "agents", len(r.order))
	return r, nil
}

// Get returns the definition for an agent type.
func (r *Registry) Get(t Type) (*Definition, error) {
	def, ok := r.definitions[t]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("agent %s not registered", t))
	}
	return def, nil
}

// Has reports whether the agent type is registered.
func (r *Registry) Has(t Type) bool {
	_, ok := r.definitions[t]
	return ok
}

// All yields every registered definition in insertion order. The sequence is
// restartable: each range starts from the beginning.
func (r *Registry) All() iter.Seq[*Definition] {
	return func(yield func(*Definition) bool) {
		for _, t := range r.order {
			if !yield(r.definitions[t]) {
				return
			}
		}
	}
}

// Types returns the registered agent types in insertion order.
func (r *Registry) Types() []Type {
	out := make([]Type, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.order)
}
