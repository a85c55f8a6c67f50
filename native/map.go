package native

import (
	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// PairFuncs build and update the key and value of a map slot in place.
type PairFuncs struct {
	// ConstructKey builds the key of a new slot.
	ConstructKey func(keyAddr uint32) error
	// ConstructValue builds the value of a new slot once its key is live.
	ConstructValue func(valueAddr uint32) error
	// AssignValue overwrites the value of an existing slot.
	AssignValue func(valueAddr uint32) error
	// DestroyKey undoes ConstructKey when ConstructValue fails.
	DestroyKey func(keyAddr uint32) error
}

// Map is a sparse hashed map: a set whose elements are key/value pairs.
// Only the key takes part in hashing and equality.
type Map struct {
	set    *Set
	layout layout.Map
}

// NewMap creates an empty map. keys hash and compare key addresses.
func NewMap(mem containers.Arena, keySize, keyAlign, valueSize, valueAlign uint32, keys KeyFuncs, opts Options) (*Map, error) {
	lay, err := layout.NewMap(opts.PairPolicy, keySize, keyAlign, valueSize, valueAlign)
	if err != nil {
		return nil, err
	}
	set, err := newSetWithLayout(mem, errors.PhaseMap, lay.Set, keys)
	if err != nil {
		return nil, err
	}
	return &Map{set: set, layout: lay}, nil
}

// Layout returns the pair and slot layout.
func (m *Map) Layout() layout.Map { return m.layout }

// Policy returns the pair policy the map was built with.
func (m *Map) Policy() layout.PairPolicy { return m.layout.Pair.Policy }

func (m *Map) Num() int32 { return m.set.Num() }

func (m *Map) MaxIndex() int32 { return m.set.MaxIndex() }

func (m *Map) IsValidIndex(index int32) bool { return m.set.IsValidIndex(index) }

// Each calls fn for every occupied slot in index order.
func (m *Map) Each(fn func(index int32) error) error { return m.set.Each(fn) }

// FindPairIndex returns the slot whose key equals the key at probe, or -1.
func (m *Map) FindPairIndex(probe uint32) (int32, error) {
	return m.set.FindIndex(probe)
}

// FindValue returns the value address for the key at probe.
func (m *Map) FindValue(probe uint32) (uint32, bool, error) {
	index, err := m.set.FindIndex(probe)
	if err != nil || index == noSlot {
		return 0, false, err
	}
	return m.set.addr(index) + m.layout.Pair.ValueOffset, true, nil
}

// KeyAddr returns the key address of occupied slot index.
func (m *Map) KeyAddr(index int32) (uint32, error) {
	addr, err := m.set.slot(index)
	if err != nil {
		return 0, err
	}
	return addr + m.layout.Pair.KeyOffset, nil
}

// ValueAddr returns the value address of occupied slot index.
func (m *Map) ValueAddr(index int32) (uint32, error) {
	addr, err := m.set.slot(index)
	if err != nil {
		return 0, err
	}
	return addr + m.layout.Pair.ValueOffset, nil
}

// Add upserts the key at probe. An existing pair has only its value
// reassigned; otherwise a slot is allocated and both halves constructed.
func (m *Map) Add(probe uint32, fns PairFuncs) (int32, bool, error) {
	index, err := m.set.FindIndex(probe)
	if err != nil {
		return noSlot, false, err
	}
	if index != noSlot {
		return index, false, fns.AssignValue(m.set.addr(index) + m.layout.Pair.ValueOffset)
	}

	return m.set.Add(probe, func(slot uint32) error {
		keyAddr := slot + m.layout.Pair.KeyOffset
		if err := fns.ConstructKey(keyAddr); err != nil {
			return err
		}
		if err := fns.ConstructValue(slot + m.layout.Pair.ValueOffset); err != nil {
			if fns.DestroyKey != nil {
				_ = fns.DestroyKey(keyAddr)
			}
			return err
		}
		return nil
	})
}

// RemoveAt frees occupied slot index. Key and value must already be destroyed.
func (m *Map) RemoveAt(index int32) error {
	return m.set.RemoveAt(index)
}

// Empty forgets every pair and releases the storage.
func (m *Map) Empty() {
	m.set.Empty()
}
