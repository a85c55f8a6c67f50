package descriptor

import (
	"sort"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// Registry owns descriptors by name and controls their lifetime.
// Registry is not thread-safe.
type Registry struct {
	types map[string]*Type
	calc  *layout.Calculator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Type),
		calc:  layout.NewCalculator(),
	}
}

// Register builds and stores a descriptor for t under name.
func (r *Registry) Register(name string, t wit.Type) (*Type, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseDescriptor, "descriptor name is empty")
	}
	if _, exists := r.types[name]; exists {
		return nil, errors.New(errors.PhaseDescriptor, errors.KindInvalidInput).
			Detail("descriptor %q already registered", name).
			Build()
	}
	d, err := newType(name, t, r.calc)
	if err != nil {
		return nil, err
	}
	r.types[name] = d
	return d, nil
}

// Lookup returns the descriptor registered under name. Unregistered names
// that parse as type expressions ("u32", "option<string>") are built and
// registered on first use.
func (r *Registry) Lookup(name string) (*Type, error) {
	if d, ok := r.types[name]; ok {
		return d, nil
	}
	t, err := ParseTypeName(name)
	if err != nil {
		return nil, errors.New(errors.PhaseDescriptor, errors.KindNotFound).
			Detail("descriptor %q not found", name).
			Cause(err).
			Build()
	}
	return r.Register(name, t)
}

// Release invalidates the descriptor registered under name and forgets it.
// Containers still holding it fail every call from then on.
func (r *Registry) Release(name string) error {
	d, ok := r.types[name]
	if !ok {
		return errors.NotFound(errors.PhaseDescriptor, "descriptor", name)
	}
	d.Release()
	delete(r.types, name)
	return nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
