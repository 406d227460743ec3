package surface

import (
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-softlimit/pkg/dom"
)

// Registry maps declared surface kinds to adapter factories. Selection is a
// plain lookup on the declared tag.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	fallback  Kind
}

// NewRegistry returns a registry with the built-in adapters registered.
func NewRegistry() *Registry {
	reg := &Registry{
		factories: make(map[Kind]Factory),
		fallback:  KindPlain,
	}
	reg.registerBuiltins()
	return reg
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, factory Factory) error {
	kind = ParseKind(string(kind))
	if factory == nil {
		return fmt.Errorf("surface: factory for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(kind Kind, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Has reports whether kind has a registered factory.
func (r *Registry) Has(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[ParseKind(string(kind))]
	return ok
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// New builds the adapter for the declared kind. Undeclared kinds use the
// plain adapter; the returned Kind reports which one was chosen.
func (r *Registry) New(declared Kind, input dom.Element, env Env) (Adapter, Kind) {
	kind := ParseKind(string(declared))

	r.mu.RLock()
	factory, ok := r.factories[kind]
	if !ok {
		kind = r.fallback
		factory = r.factories[kind]
	}
	r.mu.RUnlock()

	if factory == nil {
		return NewPlain(input, env), KindPlain
	}
	return factory(input, env), kind
}

func (r *Registry) registerBuiltins() {
	r.MustRegister(KindPlain, NewPlain)
	r.MustRegister(KindCKEditor, NewCKEditor)
	r.MustRegister(KindRedactor, NewRedactor)
	r.MustRegister(KindMarkdown, NewMarkdown)
}
