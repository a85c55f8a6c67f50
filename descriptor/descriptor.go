package descriptor

import (
	"go.bytecodealliance.org/wit"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// Descriptor is the capability bundle for one element type.
// Callers must check IsValid before using any other method.
type Descriptor interface {
	Name() string
	Size() uint32
	Align() uint32
	IsValid() bool

	Hash(mem containers.Arena, addr uint32) (uint64, error)
	Equal(mem containers.Arena, a, b uint32) (bool, error)

	// Initialize writes the default state at addr. Previous content is not examined.
	Initialize(mem containers.Arena, addr uint32) error
	// Destroy releases everything the live element at addr owns.
	Destroy(mem containers.Arena, addr uint32) error
	// Copy assigns the live element at src to the live element at dst.
	Copy(mem containers.Arena, dst, src uint32) error

	ToScript(mem containers.Arena, addr uint32, strict bool) (any, error)
	// FromScript assigns value to the live element at addr.
	FromScript(mem containers.Arena, value any, addr uint32, strict bool) error
}

// Dimensioned is a descriptor for a fixed-length array property.
type Dimensioned interface {
	Descriptor
	ArrayDim() int32
}

type lifetime struct {
	released bool
}

// Type is a Descriptor built from a WIT type.
type Type struct {
	elem  element
	wit   wit.Type
	life  *lifetime
	name  string
	size  uint32
	align uint32
	dim   int32
}

var _ Dimensioned = (*Type)(nil)

// New builds a descriptor for t.
func New(name string, t wit.Type) (*Type, error) {
	return newType(name, t, layout.NewCalculator())
}

func newType(name string, t wit.Type, calc *layout.Calculator) (*Type, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseDescriptor, "nil element type")
	}
	b := builder{calc: calc}
	elem, err := b.build(t, []string{name})
	if err != nil {
		return nil, err
	}
	info := calc.Calculate(t)
	return &Type{
		elem:  elem,
		wit:   t,
		life:  &lifetime{},
		name:  name,
		size:  info.Size,
		align: info.Align,
		dim:   1,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, t wit.Type) *Type {
	d, err := New(name, t)
	if err != nil {
		panic(err)
	}
	return d
}

func (t *Type) Name() string { return t.name }
func (t *Type) Size() uint32 { return t.size }
func (t *Type) Align() uint32 { return t.align }
func (t *Type) ArrayDim() int32 { return t.dim }
func (t *Type) WitType() wit.Type { return t.wit }
func (t *Type) IsValid() bool { return !t.life.released }

// Trivial reports whether elements own nothing outside their slot.
func (t *Type) Trivial() bool { return !t.elem.owns() }

// Release invalidates the descriptor and every view sharing its lifetime.
func (t *Type) Release() {
	t.life.released = true
}

// WithArrayDim returns a view of t describing a fixed array of n elements.
// The view is released together with t.
func (t *Type) WithArrayDim(n int32) *Type {
	view := *t
	view.dim = n
	return &view
}

func (t *Type) Hash(mem containers.Arena, addr uint32) (uint64, error) {
	d := getDigest()
	defer putDigest(d)
	if err := t.elem.hash(mem, addr, d); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

func (t *Type) Equal(mem containers.Arena, a, b uint32) (bool, error) {
	if a == b {
		return true, nil
	}
	return t.elem.equal(mem, a, b)
}

func (t *Type) Initialize(mem containers.Arena, addr uint32) error {
	if t.size == 0 {
		return nil
	}
	return mem.Write(addr, make([]byte, t.size))
}

func (t *Type) Destroy(mem containers.Arena, addr uint32) error {
	if !t.elem.owns() {
		return nil
	}
	return t.elem.destroy(mem, addr)
}

func (t *Type) Copy(mem containers.Arena, dst, src uint32) error {
	if dst == src || t.size == 0 {
		return nil
	}
	if !t.elem.owns() {
		data, err := mem.Read(src, t.size)
		if err != nil {
			return err
		}
		return mem.Write(dst, append([]byte(nil), data...))
	}
	return t.elem.copy(mem, dst, src)
}

func (t *Type) ToScript(mem containers.Arena, addr uint32, strict bool) (any, error) {
	return t.elem.toScript(mem, addr, strict, []string{t.name})
}

func (t *Type) FromScript(mem containers.Arena, value any, addr uint32, strict bool) error {
	return t.elem.fromScript(mem, value, addr, strict, []string{t.name})
}
