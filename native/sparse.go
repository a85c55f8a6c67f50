package native

import (
	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// sparse is slot storage with holes. Occupancy is one bit per slot and
// freed slots are reused LIFO before the high-water mark advances.
type sparse struct {
	mem       containers.Arena
	used      *bitset.BitSet
	free      []int32
	phase     errors.Phase
	data      uint32
	slotSize  uint32
	slotAlign uint32
	capacity  int32
	maxIndex  int32
	num       int32
}

func newSparse(mem containers.Arena, phase errors.Phase, slotSize, slotAlign uint32) sparse {
	return sparse{
		mem:       mem,
		used:      bitset.New(0),
		phase:     phase,
		slotSize:  slotSize,
		slotAlign: slotAlign,
	}
}

func (s *sparse) isValid(index int32) bool {
	return index >= 0 && index < s.maxIndex && s.used.Test(uint(index))
}

func (s *sparse) addr(index int32) uint32 {
	return s.data + uint32(index)*s.slotSize
}

// slot returns the address of an occupied slot.
func (s *sparse) slot(index int32) (uint32, error) {
	if !s.isValid(index) {
		return 0, errors.SlotNotOccupied(s.phase, index, s.maxIndex)
	}
	return s.addr(index), nil
}

// alloc claims a slot, reusing the most recently freed hole first.
func (s *sparse) alloc() (int32, error) {
	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		s.used.Set(uint(index))
		s.num++
		return index, nil
	}

	if s.maxIndex == s.capacity {
		if err := s.grow(slackGrow(s.maxIndex+1, s.capacity)); err != nil {
			return 0, err
		}
	}
	index := s.maxIndex
	s.maxIndex++
	s.used.Set(uint(index))
	s.num++
	return index, nil
}

// release returns an occupied slot to the free list.
func (s *sparse) release(index int32) {
	s.used.Clear(uint(index))
	s.free = append(s.free, index)
	s.num--
}

func (s *sparse) grow(capacity int32) error {
	bytes, ok := layout.SafeMulU32(uint32(capacity), s.slotSize)
	if !ok {
		return errors.AllocationFailed(s.phase, bytes, s.slotAlign)
	}
	data, err := s.mem.Alloc(bytes, s.slotAlign)
	if err != nil {
		return errors.Wrap(s.phase, errors.KindAllocation, err, "failed to grow sparse storage")
	}
	if s.maxIndex > 0 {
		used, err := s.mem.Read(s.data, uint32(s.maxIndex)*s.slotSize)
		if err == nil {
			err = s.mem.Write(data, append([]byte(nil), used...))
		}
		if err != nil {
			s.mem.Free(data, bytes, s.slotAlign)
			return err
		}
	}
	if s.capacity > 0 {
		s.mem.Free(s.data, uint32(s.capacity)*s.slotSize, s.slotAlign)
	}
	Logger().Debug("sparse storage grown",
		zap.String("container", string(s.phase)),
		zap.Int32("old_capacity", s.capacity),
		zap.Int32("new_capacity", capacity))
	s.data = data
	s.capacity = capacity
	return nil
}

// each calls fn for every occupied slot in index order.
func (s *sparse) each(fn func(index int32) error) error {
	for i, ok := s.used.NextSet(0); ok && i < uint(s.maxIndex); i, ok = s.used.NextSet(i + 1) {
		if err := fn(int32(i)); err != nil {
			return err
		}
	}
	return nil
}

// reset frees the storage and forgets every slot.
func (s *sparse) reset() {
	if s.capacity > 0 {
		s.mem.Free(s.data, uint32(s.capacity)*s.slotSize, s.slotAlign)
	}
	s.used.ClearAll()
	s.free = s.free[:0]
	s.data, s.capacity, s.maxIndex, s.num = 0, 0, 0, 0
}
