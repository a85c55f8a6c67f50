package layout

import (
	"fmt"

	"github.com/wippyai/script-containers/errors"
)

// hashFieldSize is the size of the hashNextId and hashIndex slot fields.
const hashFieldSize = 4

// Set is the slot layout of a sparse hashed container.
// KeyOffset locates the hashed part of the element (0 for plain sets).
type Set struct {
	Size             uint32
	Align            uint32
	ElementSize      uint32
	KeyOffset        uint32
	HashNextIDOffset uint32
	HashIndexOffset  uint32
}

// NewSet derives the slot layout for elements of the given size and alignment.
func NewSet(elemSize, elemAlign uint32) (Set, error) {
	if !IsPow2(elemAlign) {
		return Set{}, errors.InvalidInput(errors.PhaseLayout, fmt.Sprintf("alignment %d is not a power of two", elemAlign))
	}

	align := maxU32(elemAlign, hashFieldSize)
	next := AlignTo(elemSize, hashFieldSize)
	index := next + hashFieldSize

	return Set{
		Size:             AlignTo(index+hashFieldSize, align),
		Align:            align,
		ElementSize:      elemSize,
		HashNextIDOffset: next,
		HashIndexOffset:  index,
	}, nil
}

// Map is the slot layout of a sparse hashed map: a set of pairs.
type Map struct {
	Pair Pair
	Set  Set
}

// NewMap derives the map slot layout under the given pair policy.
func NewMap(policy PairPolicy, keySize, keyAlign, valueSize, valueAlign uint32) (Map, error) {
	pair, err := NewPair(policy, keySize, keyAlign, valueSize, valueAlign)
	if err != nil {
		return Map{}, err
	}
	set, err := NewSet(pair.SlotSize, pair.SlotAlignment)
	if err != nil {
		return Map{}, err
	}
	set.KeyOffset = pair.KeyOffset
	return Map{Pair: pair, Set: set}, nil
}
