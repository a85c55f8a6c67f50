// Package native implements the container storage driven by the bridges.
//
// All element bytes live in arena memory; only bookkeeping (counts,
// occupancy bits, the free list and hash bucket heads) is kept on the Go
// side. Storage may be reallocated by any growing call, so slot addresses
// are valid only until the next mutation.
//
// Array is dense: slots [0, Num) are live and contiguous. Set and Map are
// sparse: live slots lie in [0, MaxIndex) with holes, freed slots are reused
// most-recently-freed first, and MaxIndex only shrinks on Empty.
//
// The containers never construct or destroy elements themselves. Add hands
// out raw slots, Remove and Empty discard them, and hashing and equality
// come from caller-supplied KeyFuncs.
package native
