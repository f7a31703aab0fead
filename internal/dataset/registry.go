package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Factory constructs a fresh Dataset instance.
type Factory func() Dataset

// Registry maps dataset names to factories. Registration is explicit: the
// process-wide registry is populated once at startup by NewDefaultRegistry
// rather than by package import side effects, so there is no hidden ordering
// dependency.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register stores a factory under name. Duplicate registrations silently
// overwrite; the last writer wins.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Get invokes the factory registered under name to produce a fresh Dataset
// instance. A lookup miss fails with ErrUnknownDataset, listing the
// currently registered names.
func (r *Registry) Get(name string) (Dataset, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrUnknownDataset, name, strings.Join(r.Names(), ", "))
	}
	return factory(), nil
}

// Names returns the registered dataset names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry builds the registry of every concrete dataset this
// module ships.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("mnist", func() Dataset { return NewMNIST() })
	r.Register("shapes", func() Dataset { return NewShapes() })
	r.Register("sentiment", func() Dataset { return NewSentiment() })
	return r
}
