package native

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

const (
	firstGrow    = 4
	constantGrow = 16
)

// Array is a dense array of fixed-size slots in arena memory.
type Array struct {
	mem  containers.Arena
	data uint32
	num  int32
	max  int32
}

// NewArray creates an empty array with no storage.
func NewArray(mem containers.Arena) *Array {
	return &Array{mem: mem}
}

// Num returns the number of slots in use.
func (a *Array) Num() int32 { return a.num }

// Max returns the number of slots allocated.
func (a *Array) Max() int32 { return a.max }

// Data returns the address of slot 0, or 0 when nothing is allocated.
func (a *Array) Data() uint32 { return a.data }

// IsValidIndex reports whether 0 <= index < Num.
func (a *Array) IsValidIndex(index int32) bool {
	return index >= 0 && index < a.num
}

// SlotAddr returns the address of slot index.
func (a *Array) SlotAddr(index int32, size uint32) (uint32, error) {
	if !a.IsValidIndex(index) {
		return 0, errors.IndexOutOfRange(errors.PhaseArray, index, a.num)
	}
	return a.data + uint32(index)*size, nil
}

// slackGrow returns the slot count to allocate when num slots are needed.
func slackGrow(num, max int32) int32 {
	if max == 0 && num <= firstGrow {
		return firstGrow
	}
	grow := int64(num) + 3*int64(num)/8 + constantGrow
	if grow > 1<<31-1 {
		grow = 1<<31 - 1
	}
	return int32(grow)
}

// Add appends count uninitialized slots and returns the index of the first.
func (a *Array) Add(count int32, size, align uint32) (int32, error) {
	if count < 0 {
		return 0, errors.InvalidInput(errors.PhaseArray, "negative slot count")
	}
	first := a.num
	if int64(a.num)+int64(count) > 1<<31-1 {
		return 0, errors.New(errors.PhaseArray, errors.KindOverflow).
			Detail("array of %d slots cannot grow by %d", a.num, count).
			Build()
	}
	need := a.num + count
	if need > a.max {
		if err := a.realloc(slackGrow(need, a.max), size, align); err != nil {
			return 0, err
		}
	}
	a.num = need
	return first, nil
}

// Remove discards count slots starting at index, shifting later slots down.
func (a *Array) Remove(index, count int32, size, align uint32) error {
	if count < 0 || index < 0 || int64(index)+int64(count) > int64(a.num) {
		return errors.IndexOutOfRange(errors.PhaseArray, index, a.num)
	}
	if count == 0 {
		return nil
	}

	tail := a.num - index - count
	if tail > 0 {
		src := a.data + uint32(index+count)*size
		data, err := a.mem.Read(src, uint32(tail)*size)
		if err != nil {
			return err
		}
		if err := a.mem.Write(a.data+uint32(index)*size, append([]byte(nil), data...)); err != nil {
			return err
		}
	}
	a.num -= count
	return nil
}

// Empty discards every slot and keeps room for slack slots.
func (a *Array) Empty(slack int32, size, align uint32) error {
	a.num = 0
	if slack < 0 {
		slack = 0
	}
	if a.max == slack {
		return nil
	}
	return a.realloc(slack, size, align)
}

func (a *Array) realloc(max int32, size, align uint32) error {
	var data uint32
	if max > 0 {
		bytes, ok := layout.SafeMulU32(uint32(max), size)
		if !ok || bytes == 0 {
			return errors.AllocationFailed(errors.PhaseArray, bytes, align)
		}
		var err error
		data, err = a.mem.Alloc(bytes, align)
		if err != nil {
			return errors.Wrap(errors.PhaseArray, errors.KindAllocation, err,
				"failed to grow array storage")
		}
		if a.num > 0 {
			used, err := a.mem.Read(a.data, uint32(a.num)*size)
			if err != nil {
				a.mem.Free(data, bytes, align)
				return err
			}
			if err := a.mem.Write(data, append([]byte(nil), used...)); err != nil {
				a.mem.Free(data, bytes, align)
				return err
			}
		}
	}

	if a.max > 0 {
		a.mem.Free(a.data, uint32(a.max)*size, align)
	}
	Logger().Debug("array storage reallocated",
		zap.Int32("num", a.num),
		zap.Int32("old_max", a.max),
		zap.Int32("new_max", max))
	a.data = data
	a.max = max
	return nil
}

// Release frees the storage. The array must not hold live elements.
func (a *Array) Release(size, align uint32) {
	if a.max > 0 {
		a.mem.Free(a.data, uint32(a.max)*size, align)
	}
	a.data, a.num, a.max = 0, 0, 0
}
