package bridge

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
)

// FixedArray is a non-owning view over ArrayDim elements at base. The
// embedding structure constructs and destroys the elements; the view only
// reads and writes them.
type FixedArray struct {
	mem  containers.Arena
	elem descriptor.Dimensioned
	base uint32
}

// NewFixedArray views the fixed array at base described by elem.
func NewFixedArray(mem containers.Arena, base uint32, elem descriptor.Dimensioned) *FixedArray {
	return &FixedArray{mem: mem, elem: elem, base: base}
}

// Element returns the element descriptor.
func (f *FixedArray) Element() descriptor.Dimensioned { return f.elem }

// Base returns the address of element 0.
func (f *FixedArray) Base() uint32 { return f.base }

// Num returns the declared length.
func (f *FixedArray) Num() (int32, error) {
	if err := checkValid(errors.PhaseFixed, f.elem); err != nil {
		return 0, reject(errors.PhaseFixed, "Num", err)
	}
	return f.elem.ArrayDim(), nil
}

func (f *FixedArray) slot(op string, index int32) (uint32, error) {
	if err := checkValid(errors.PhaseFixed, f.elem); err != nil {
		return 0, reject(errors.PhaseFixed, op, err)
	}
	if index < 0 || index >= f.elem.ArrayDim() {
		err := errors.IndexOutOfRange(errors.PhaseFixed, index, f.elem.ArrayDim())
		return 0, reject(errors.PhaseFixed, op, err, zap.Int32("index", index))
	}
	return f.base + uint32(index)*f.elem.Size(), nil
}

// Get converts element index strictly.
func (f *FixedArray) Get(index int32) (any, error) {
	addr, err := f.slot("Get", index)
	if err != nil {
		return nil, err
	}
	return f.elem.ToScript(f.mem, addr, true)
}

// Set writes value into element index strictly.
func (f *FixedArray) Set(index int32, value any) error {
	addr, err := f.slot("Set", index)
	if err != nil {
		return err
	}
	return f.elem.FromScript(f.mem, value, addr, true)
}
