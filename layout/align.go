package layout

import "math"

// AlignTo rounds offset up to the next multiple of align (a power of two).
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// IsPow2 reports whether v is a non-zero power of two.
func IsPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// RoundUpPow2 returns the smallest power of two >= v (1 for v == 0).
func RoundUpPow2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// DiscriminantSize returns the byte size of an enum or variant tag.
func DiscriminantSize(numCases int) uint32 {
	if numCases <= 1<<8 {
		return 1
	} else if numCases <= 1<<16 {
		return 2
	}
	return 4
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
