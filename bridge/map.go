package bridge

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/native"
)

// Map is the bridge over a sparse hash map.
type Map struct {
	mem   containers.Arena
	key   descriptor.Descriptor
	value descriptor.Descriptor
	m     *native.Map
}

// NewMap binds an empty native map to mem. opts fixes the pair layout.
func NewMap(mem containers.Arena, key, value descriptor.Descriptor, opts native.Options) (*Map, error) {
	if err := checkValid(errors.PhaseMap, key, value); err != nil {
		return nil, err
	}
	m, err := native.NewMap(mem, key.Size(), key.Align(), value.Size(), value.Align(), keyFuncs(mem, key), opts)
	if err != nil {
		return nil, err
	}
	return &Map{mem: mem, key: key, value: value, m: m}, nil
}

// Native returns the underlying storage.
func (m *Map) Native() *native.Map { return m.m }

// Key returns the key descriptor.
func (m *Map) Key() descriptor.Descriptor { return m.key }

// Value returns the value descriptor.
func (m *Map) Value() descriptor.Descriptor { return m.value }

func (m *Map) check(op string) error {
	if err := checkValid(errors.PhaseMap, m.key, m.value); err != nil {
		return reject(errors.PhaseMap, op, err)
	}
	return nil
}

// Num returns the pair count. It does not check the descriptors.
func (m *Map) Num() int32 {
	return m.m.Num()
}

// GetMaxIndex returns the allocation high-water mark. It does not check
// the descriptors.
func (m *Map) GetMaxIndex() int32 {
	return m.m.MaxIndex()
}

// IsValidIndex reports whether slot index holds a pair.
func (m *Map) IsValidIndex(index int32) bool {
	return m.m.IsValidIndex(index)
}

// Add inserts key with value, or overwrites the value of an existing equal
// key. The stored key is left untouched on overwrite.
func (m *Map) Add(key, value any) error {
	if err := m.check("Add"); err != nil {
		return err
	}
	k, err := newScratch(m.mem, m.key, key, false)
	if err != nil {
		return reject(errors.PhaseMap, "Add", err)
	}
	defer k.release()
	v, err := newScratch(m.mem, m.value, value, false)
	if err != nil {
		return reject(errors.PhaseMap, "Add", err)
	}
	defer v.release()

	_, _, err = m.m.Add(k.addr, native.PairFuncs{
		ConstructKey: func(addr uint32) error {
			return constructFrom(m.mem, m.key, addr, k.addr)
		},
		ConstructValue: func(addr uint32) error {
			return constructFrom(m.mem, m.value, addr, v.addr)
		},
		AssignValue: func(addr uint32) error {
			return m.value.Copy(m.mem, addr, v.addr)
		},
		DestroyKey: func(addr uint32) error {
			return m.key.Destroy(m.mem, addr)
		},
	})
	return err
}

// Set is an alias of Add.
func (m *Map) Set(key, value any) error {
	return m.Add(key, value)
}

// Get returns the value stored under key. A missing key is not an error:
// Get reports (nil, false, nil).
func (m *Map) Get(key any) (any, bool, error) {
	if err := m.check("Get"); err != nil {
		return nil, false, err
	}
	k, err := newScratch(m.mem, m.key, key, false)
	if err != nil {
		return nil, false, reject(errors.PhaseMap, "Get", err)
	}
	defer k.release()

	addr, ok, err := m.m.FindValue(k.addr)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := m.value.ToScript(m.mem, addr, true)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Remove destroys the pair stored under key and frees its slot. A missing
// key fails with key_not_found.
func (m *Map) Remove(key any) error {
	if err := m.check("Remove"); err != nil {
		return err
	}
	k, err := newScratch(m.mem, m.key, key, false)
	if err != nil {
		return reject(errors.PhaseMap, "Remove", err)
	}
	defer k.release()

	index, err := m.m.FindPairIndex(k.addr)
	if err != nil {
		return err
	}
	if index == containers.IndexNone {
		return reject(errors.PhaseMap, "Remove", errors.KeyNotFound(errors.PhaseMap, key))
	}
	return m.destroyPair(index, true)
}

func (m *Map) destroyPair(index int32, free bool) error {
	keyAddr, err := m.m.KeyAddr(index)
	if err != nil {
		return err
	}
	valueAddr, err := m.m.ValueAddr(index)
	if err != nil {
		return err
	}
	if err := m.key.Destroy(m.mem, keyAddr); err != nil {
		return err
	}
	if err := m.value.Destroy(m.mem, valueAddr); err != nil {
		return err
	}
	if free {
		return m.m.RemoveAt(index)
	}
	return nil
}

// GetKey converts the key in occupied slot index strictly, without
// touching the value.
func (m *Map) GetKey(index int32) (any, error) {
	if err := m.check("GetKey"); err != nil {
		return nil, err
	}
	addr, err := m.m.KeyAddr(index)
	if err != nil {
		return nil, reject(errors.PhaseMap, "GetKey", err, zap.Int32("index", index))
	}
	return m.key.ToScript(m.mem, addr, true)
}

// Empty destroys every pair and resets Num and GetMaxIndex to zero.
func (m *Map) Empty() error {
	if err := m.check("Empty"); err != nil {
		return err
	}
	if err := m.m.Each(func(index int32) error { return m.destroyPair(index, false) }); err != nil {
		return err
	}
	m.m.Empty()
	return nil
}
