package binding

import (
	stderrors "errors"

	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/bridge"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
)

// fixedBuffer is an embedded fixed array owned by the surface.
type fixedBuffer struct {
	elem *descriptor.Type
	base uint32
}

// Surface creates bound containers in one arena and owns their element
// descriptors. Surface is not thread-safe.
type Surface struct {
	arena    containers.Arena
	registry *descriptor.Registry
	objects  []*Object
	fixed    []fixedBuffer
	opts     Options
}

// NewSurface creates a surface allocating from arena.
func NewSurface(arena containers.Arena, opts Options) *Surface {
	return &Surface{
		arena:    arena,
		registry: descriptor.NewRegistry(),
		opts:     opts,
	}
}

// NewSurfaceWithDefaults creates a surface with DefaultOptions.
func NewSurfaceWithDefaults(arena containers.Arena) *Surface {
	return NewSurface(arena, DefaultOptions())
}

// Registry returns the descriptor registry. Releasing a descriptor there
// makes every container using it refuse further calls.
func (s *Surface) Registry() *descriptor.Registry { return s.registry }

// Arena returns the arena containers are allocated from.
func (s *Surface) Arena() containers.Arena { return s.arena }

func (s *Surface) track(class *Class, self any) *Object {
	obj := NewObject(class, self)
	s.objects = append(s.objects, obj)
	Logger().Debug("container created", zap.String("class", class.Name))
	return obj
}

// NewArray creates an empty dynamic array of elem.
func (s *Surface) NewArray(elem string) (*Object, error) {
	d, err := s.registry.Lookup(elem)
	if err != nil {
		return nil, err
	}
	return s.track(ArrayClass, bridge.NewArray(s.arena, d, s.opts.Bridge)), nil
}

// NewSet creates an empty set of elem.
func (s *Surface) NewSet(elem string) (*Object, error) {
	d, err := s.registry.Lookup(elem)
	if err != nil {
		return nil, err
	}
	set, err := bridge.NewSet(s.arena, d)
	if err != nil {
		return nil, err
	}
	return s.track(SetClass, set), nil
}

// NewMap creates an empty map from key to value.
func (s *Surface) NewMap(key, value string) (*Object, error) {
	k, err := s.registry.Lookup(key)
	if err != nil {
		return nil, err
	}
	v, err := s.registry.Lookup(value)
	if err != nil {
		return nil, err
	}
	m, err := bridge.NewMap(s.arena, k, v, s.opts.Native)
	if err != nil {
		return nil, err
	}
	return s.track(MapClass, m), nil
}

// NewFixedArray allocates dim initialized elements of elem and returns a
// view over them. The surface owns the buffer until Close.
func (s *Surface) NewFixedArray(elem string, dim int32) (*Object, error) {
	if dim <= 0 {
		return nil, errors.InvalidInput(errors.PhaseBinding, "fixed array dimension must be positive")
	}
	d, err := s.registry.Lookup(elem)
	if err != nil {
		return nil, err
	}
	view := d.WithArrayDim(dim)
	base, err := s.arena.Alloc(uint32(dim)*view.Size(), view.Align())
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < dim; i++ {
		if err := view.Initialize(s.arena, base+uint32(i)*view.Size()); err != nil {
			s.arena.Free(base, uint32(dim)*view.Size(), view.Align())
			return nil, err
		}
	}
	s.fixed = append(s.fixed, fixedBuffer{elem: view, base: base})
	return s.track(FixedArrayClass, bridge.NewFixedArray(s.arena, base, view)), nil
}

// Close empties every container and frees every fixed array buffer the
// surface created. Containers whose descriptor was released cannot be
// emptied; their errors are joined into the result.
func (s *Surface) Close() error {
	var errs []error
	for _, obj := range s.objects {
		if _, ok := obj.class.Methods["Empty"]; !ok {
			continue
		}
		if _, err := obj.Call("Empty"); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range s.fixed {
		if !f.elem.IsValid() {
			errs = append(errs, errors.DescriptorInvalid(errors.PhaseBinding, f.elem.Name()))
			continue
		}
		size := f.elem.Size()
		for i := int32(0); i < f.elem.ArrayDim(); i++ {
			if err := f.elem.Destroy(s.arena, f.base+uint32(i)*size); err != nil {
				errs = append(errs, err)
			}
		}
		s.arena.Free(f.base, uint32(f.elem.ArrayDim())*size, f.elem.Align())
	}
	s.objects, s.fixed = nil, nil
	return stderrors.Join(errs...)
}
