package bridge

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/native"
)

// Set is the bridge over a sparse hash set.
type Set struct {
	mem  containers.Arena
	elem descriptor.Descriptor
	set  *native.Set
}

// keyFuncs adapts a descriptor to native hashing.
func keyFuncs(mem containers.Arena, d descriptor.Descriptor) native.KeyFuncs {
	return native.KeyFuncs{
		Hash: func(addr uint32) (uint64, error) {
			return d.Hash(mem, addr)
		},
		Equal: func(a, b uint32) (bool, error) {
			return d.Equal(mem, a, b)
		},
	}
}

// NewSet binds an empty native set of elem to mem.
func NewSet(mem containers.Arena, elem descriptor.Descriptor) (*Set, error) {
	if err := checkValid(errors.PhaseSet, elem); err != nil {
		return nil, err
	}
	set, err := native.NewSet(mem, elem.Size(), elem.Align(), keyFuncs(mem, elem))
	if err != nil {
		return nil, err
	}
	return &Set{mem: mem, elem: elem, set: set}, nil
}

// Native returns the underlying storage.
func (s *Set) Native() *native.Set { return s.set }

// Element returns the element descriptor.
func (s *Set) Element() descriptor.Descriptor { return s.elem }

// Num returns the live element count. It does not check the descriptor.
func (s *Set) Num() int32 {
	return s.set.Num()
}

// GetMaxIndex returns the allocation high-water mark, which may exceed Num.
// It does not check the descriptor.
func (s *Set) GetMaxIndex() int32 {
	return s.set.MaxIndex()
}

// IsValidIndex reports whether slot index is occupied.
func (s *Set) IsValidIndex(index int32) bool {
	return s.set.IsValidIndex(index)
}

// Add inserts value unless an equal element is already present.
func (s *Set) Add(value any) error {
	if err := checkValid(errors.PhaseSet, s.elem); err != nil {
		return reject(errors.PhaseSet, "Add", err)
	}
	probe, err := newScratch(s.mem, s.elem, value, false)
	if err != nil {
		return reject(errors.PhaseSet, "Add", err)
	}
	defer probe.release()

	_, _, err = s.set.Add(probe.addr, func(slot uint32) error {
		return constructFrom(s.mem, s.elem, slot, probe.addr)
	})
	return err
}

// Get converts the element in occupied slot index strictly.
func (s *Set) Get(index int32) (any, error) {
	if err := checkValid(errors.PhaseSet, s.elem); err != nil {
		return nil, reject(errors.PhaseSet, "Get", err)
	}
	addr, err := s.set.SlotAddr(index)
	if err != nil {
		return nil, reject(errors.PhaseSet, "Get", err, zap.Int32("index", index))
	}
	return s.elem.ToScript(s.mem, addr, true)
}

// FindIndex returns the slot of the element equal to value, or
// containers.IndexNone.
func (s *Set) FindIndex(value any) (int32, error) {
	if err := checkValid(errors.PhaseSet, s.elem); err != nil {
		return containers.IndexNone, reject(errors.PhaseSet, "FindIndex", err)
	}
	probe, err := newScratch(s.mem, s.elem, value, false)
	if err != nil {
		return containers.IndexNone, reject(errors.PhaseSet, "FindIndex", err)
	}
	defer probe.release()
	return s.set.FindIndex(probe.addr)
}

// Contains reports whether an element equal to value is present.
func (s *Set) Contains(value any) (bool, error) {
	index, err := s.FindIndex(value)
	return index != containers.IndexNone, err
}

// RemoveAt destroys the element in occupied slot index and frees the slot.
// GetMaxIndex does not shrink.
func (s *Set) RemoveAt(index int32) error {
	if err := checkValid(errors.PhaseSet, s.elem); err != nil {
		return reject(errors.PhaseSet, "RemoveAt", err)
	}
	addr, err := s.set.SlotAddr(index)
	if err != nil {
		return reject(errors.PhaseSet, "RemoveAt", err, zap.Int32("index", index))
	}
	if err := s.elem.Destroy(s.mem, addr); err != nil {
		return err
	}
	return s.set.RemoveAt(index)
}

// Empty destroys every element and resets Num and GetMaxIndex to zero.
func (s *Set) Empty() error {
	if err := checkValid(errors.PhaseSet, s.elem); err != nil {
		return reject(errors.PhaseSet, "Empty", err)
	}
	err := s.set.Each(func(index int32) error {
		addr, err := s.set.SlotAddr(index)
		if err != nil {
			return err
		}
		return s.elem.Destroy(s.mem, addr)
	})
	if err != nil {
		return err
	}
	s.set.Empty()
	return nil
}
