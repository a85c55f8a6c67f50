package bridge

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/native"
)

// Array is the bridge over a dense dynamic array.
type Array struct {
	mem  containers.Arena
	elem descriptor.Descriptor
	arr  *native.Array
	opts Options
}

// NewArray binds an empty native array of elem to mem.
func NewArray(mem containers.Arena, elem descriptor.Descriptor, opts Options) *Array {
	return &Array{
		mem:  mem,
		elem: elem,
		arr:  native.NewArray(mem),
		opts: opts,
	}
}

// NewArrayWithDefaults binds an array with DefaultOptions.
func NewArrayWithDefaults(mem containers.Arena, elem descriptor.Descriptor) *Array {
	return NewArray(mem, elem, DefaultOptions())
}

// Native returns the underlying storage.
func (a *Array) Native() *native.Array { return a.arr }

// Element returns the element descriptor.
func (a *Array) Element() descriptor.Descriptor { return a.elem }

// Num returns the element count. It does not check the descriptor.
func (a *Array) Num() int32 {
	return a.arr.Num()
}

// IsValidIndex reports whether 0 <= index < Num.
func (a *Array) IsValidIndex(index int32) bool {
	return a.arr.IsValidIndex(index)
}

func (a *Array) slot(op string, index int32) (uint32, error) {
	if err := checkValid(errors.PhaseArray, a.elem); err != nil {
		return 0, reject(errors.PhaseArray, op, err)
	}
	addr, err := a.arr.SlotAddr(index, a.elem.Size())
	if err != nil {
		return 0, reject(errors.PhaseArray, op, err, zap.Int32("index", index))
	}
	return addr, nil
}

// Add appends values and returns the index of the first one. Elements are
// converted leniently. If any conversion fails every new slot is destroyed
// and the array is left as it was.
func (a *Array) Add(values ...any) (int32, error) {
	if err := checkValid(errors.PhaseArray, a.elem); err != nil {
		return 0, reject(errors.PhaseArray, "Add", err)
	}
	if len(values) == 0 {
		return 0, reject(errors.PhaseArray, "Add", errors.ArgumentCount(errors.PhaseArray, "Add", 1, 0))
	}

	size, align := a.elem.Size(), a.elem.Align()
	first, err := a.arr.Add(int32(len(values)), size, align)
	if err != nil {
		return 0, reject(errors.PhaseArray, "Add", err)
	}

	for i, v := range values {
		addr := a.arr.Data() + uint32(first+int32(i))*size
		err := a.elem.Initialize(a.mem, addr)
		if err == nil {
			err = a.elem.FromScript(a.mem, v, addr, false)
			if err != nil {
				_ = a.elem.Destroy(a.mem, addr)
			}
		}
		if err != nil {
			a.rollback(first, int32(i))
			return 0, reject(errors.PhaseArray, "Add", err, zap.Int("value", i))
		}
	}
	return first, nil
}

// rollback destroys the built slots [first, first+built) and drops every
// slot added from first on.
func (a *Array) rollback(first, built int32) {
	size := a.elem.Size()
	for i := int32(0); i < built; i++ {
		_ = a.elem.Destroy(a.mem, a.arr.Data()+uint32(first+i)*size)
	}
	_ = a.arr.Remove(first, a.arr.Num()-first, size, a.elem.Align())
}

// Get converts element index to a script value strictly.
func (a *Array) Get(index int32) (any, error) {
	addr, err := a.slot("Get", index)
	if err != nil {
		return nil, err
	}
	return a.elem.ToScript(a.mem, addr, true)
}

// Set reinitializes element index and writes value leniently. Unless
// DestroyBeforeSet is on, the previous value is not destroyed first.
func (a *Array) Set(index int32, value any) error {
	addr, err := a.slot("Set", index)
	if err != nil {
		return err
	}
	if a.opts.DestroyBeforeSet {
		if err := a.elem.Destroy(a.mem, addr); err != nil {
			return err
		}
	}
	if err := a.elem.Initialize(a.mem, addr); err != nil {
		return err
	}
	return a.elem.FromScript(a.mem, value, addr, false)
}

// FindIndex returns the first index holding an element equal to value, or
// containers.IndexNone.
func (a *Array) FindIndex(value any) (int32, error) {
	if err := checkValid(errors.PhaseArray, a.elem); err != nil {
		return containers.IndexNone, reject(errors.PhaseArray, "FindIndex", err)
	}
	probe, err := newScratch(a.mem, a.elem, value, false)
	if err != nil {
		return containers.IndexNone, reject(errors.PhaseArray, "FindIndex", err)
	}
	defer probe.release()

	size := a.elem.Size()
	for i := int32(0); i < a.arr.Num(); i++ {
		eq, err := a.elem.Equal(a.mem, probe.addr, a.arr.Data()+uint32(i)*size)
		if err != nil {
			return containers.IndexNone, err
		}
		if eq {
			return i, nil
		}
	}
	return containers.IndexNone, nil
}

// Contains reports whether an element equal to value exists.
func (a *Array) Contains(value any) (bool, error) {
	index, err := a.FindIndex(value)
	return index != containers.IndexNone, err
}

// RemoveAt destroys element index and closes the gap, preserving order.
func (a *Array) RemoveAt(index int32) error {
	addr, err := a.slot("RemoveAt", index)
	if err != nil {
		return err
	}
	if err := a.elem.Destroy(a.mem, addr); err != nil {
		return err
	}
	return a.arr.Remove(index, 1, a.elem.Size(), a.elem.Align())
}

// Empty destroys every element and truncates the array to zero length.
func (a *Array) Empty() error {
	if err := checkValid(errors.PhaseArray, a.elem); err != nil {
		return reject(errors.PhaseArray, "Empty", err)
	}
	size := a.elem.Size()
	for i := int32(0); i < a.arr.Num(); i++ {
		if err := a.elem.Destroy(a.mem, a.arr.Data()+uint32(i)*size); err != nil {
			return err
		}
	}
	return a.arr.Empty(0, size, a.elem.Align())
}
