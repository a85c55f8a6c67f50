package native

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

const noSlot int32 = -1

// KeyFuncs hash and compare the hashed part of live elements by address.
type KeyFuncs struct {
	Hash  func(addr uint32) (uint64, error)
	Equal func(a, b uint32) (bool, error)
}

// Set is a sparse hashed set. The element and its hash chain link share
// one slot, laid out by layout.Set. Bucket heads are kept on the Go side.
type Set struct {
	keys    KeyFuncs
	buckets []int32
	sparse
	layout layout.Set
}

// NewSet creates an empty set for elements of the given size and alignment.
func NewSet(mem containers.Arena, elemSize, elemAlign uint32, keys KeyFuncs) (*Set, error) {
	lay, err := layout.NewSet(elemSize, elemAlign)
	if err != nil {
		return nil, err
	}
	return newSetWithLayout(mem, errors.PhaseSet, lay, keys)
}

func newSetWithLayout(mem containers.Arena, phase errors.Phase, lay layout.Set, keys KeyFuncs) (*Set, error) {
	if keys.Hash == nil || keys.Equal == nil {
		return nil, errors.InvalidInput(phase, "hash and equality functions are required")
	}
	return &Set{
		keys:   keys,
		sparse: newSparse(mem, phase, lay.Size, lay.Align),
		layout: lay,
	}, nil
}

// Layout returns the slot layout.
func (s *Set) Layout() layout.Set { return s.layout }

// Num returns the number of live elements.
func (s *Set) Num() int32 { return s.num }

// MaxIndex returns one past the highest slot ever allocated since the last Empty.
func (s *Set) MaxIndex() int32 { return s.maxIndex }

// IsValidIndex reports whether slot index holds a live element.
func (s *Set) IsValidIndex(index int32) bool { return s.isValid(index) }

// SlotAddr returns the address of the element in occupied slot index.
func (s *Set) SlotAddr(index int32) (uint32, error) {
	return s.slot(index)
}

// Each calls fn for every occupied slot in index order.
func (s *Set) Each(fn func(index int32) error) error {
	return s.each(fn)
}

// bucketCount mirrors the native hash sizing: one bucket below four
// elements, otherwise the power of two at or above n/2+8.
func bucketCount(n int32) int {
	if n < 4 {
		return 1
	}
	return int(layout.RoundUpPow2(uint32(n/2 + 8)))
}

func (s *Set) next(addr uint32) (int32, error) {
	v, err := s.mem.ReadU32(addr + s.layout.HashNextIDOffset)
	return int32(v), err
}

func (s *Set) link(index int32, hash uint64) error {
	addr := s.addr(index)
	b := int32(hash & uint64(len(s.buckets)-1))
	if err := s.mem.WriteU32(addr+s.layout.HashNextIDOffset, uint32(s.buckets[b])); err != nil {
		return err
	}
	if err := s.mem.WriteU32(addr+s.layout.HashIndexOffset, uint32(b)); err != nil {
		return err
	}
	s.buckets[b] = index
	return nil
}

// FindIndex returns the slot whose key equals the element at probe, or -1.
func (s *Set) FindIndex(probe uint32) (int32, error) {
	if s.num == 0 || len(s.buckets) == 0 {
		return noSlot, nil
	}
	hash, err := s.keys.Hash(probe)
	if err != nil {
		return noSlot, err
	}
	return s.findHashed(probe, hash)
}

func (s *Set) findHashed(probe uint32, hash uint64) (int32, error) {
	if len(s.buckets) == 0 {
		return noSlot, nil
	}
	id := s.buckets[hash&uint64(len(s.buckets)-1)]
	for id != noSlot {
		addr := s.addr(id)
		eq, err := s.keys.Equal(probe, addr+s.layout.KeyOffset)
		if err != nil {
			return noSlot, err
		}
		if eq {
			return id, nil
		}
		if id, err = s.next(addr); err != nil {
			return noSlot, err
		}
	}
	return noSlot, nil
}

// Add inserts the element at probe unless an equal one exists. For a new
// slot construct must build the element at the slot address; if it fails
// the slot is freed and the set is unchanged. Add returns the slot index
// and whether a new slot was created.
func (s *Set) Add(probe uint32, construct func(slot uint32) error) (int32, bool, error) {
	hash, err := s.keys.Hash(probe)
	if err != nil {
		return noSlot, false, err
	}
	found, err := s.findHashed(probe, hash)
	if err != nil {
		return noSlot, false, err
	}
	if found != noSlot {
		return found, false, nil
	}

	index, err := s.alloc()
	if err != nil {
		return noSlot, false, err
	}
	if err := construct(s.addr(index)); err != nil {
		s.release(index)
		return noSlot, false, err
	}

	if bucketCount(s.num) > len(s.buckets) {
		if err := s.rehash(); err != nil {
			return index, true, err
		}
		return index, true, nil
	}
	if err := s.link(index, hash); err != nil {
		return index, true, err
	}
	return index, true, nil
}

// Rehash rebuilds every bucket chain from the live elements.
func (s *Set) Rehash() error {
	return s.rehash()
}

func (s *Set) rehash() error {
	n := bucketCount(s.num)
	Logger().Debug("rehash",
		zap.String("container", string(s.phase)),
		zap.Int32("num", s.num),
		zap.Int("old_buckets", len(s.buckets)),
		zap.Int("new_buckets", n))

	buckets := make([]int32, n)
	for i := range buckets {
		buckets[i] = noSlot
	}
	s.buckets = buckets

	return s.each(func(index int32) error {
		hash, err := s.keys.Hash(s.addr(index) + s.layout.KeyOffset)
		if err != nil {
			return err
		}
		return s.link(index, hash)
	})
}

// RemoveAt unlinks occupied slot index and frees it. The element must
// already be destroyed.
func (s *Set) RemoveAt(index int32) error {
	addr, err := s.slot(index)
	if err != nil {
		return err
	}
	b, err := s.mem.ReadU32(addr + s.layout.HashIndexOffset)
	if err != nil {
		return err
	}
	if int(b) >= len(s.buckets) {
		return errors.InvalidData(s.phase, nil, "corrupt hash index")
	}
	next, err := s.next(addr)
	if err != nil {
		return err
	}

	if s.buckets[b] == index {
		s.buckets[b] = next
	} else {
		id := s.buckets[b]
		for id != noSlot {
			prev := s.addr(id)
			n, err := s.next(prev)
			if err != nil {
				return err
			}
			if n == index {
				if err := s.mem.WriteU32(prev+s.layout.HashNextIDOffset, uint32(next)); err != nil {
					return err
				}
				break
			}
			id = n
		}
	}

	s.release(index)
	return nil
}

// Empty forgets every slot and releases the storage. Live elements must
// already be destroyed.
func (s *Set) Empty() {
	s.reset()
	s.buckets = nil
}
