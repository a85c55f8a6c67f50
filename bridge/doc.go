// Package bridge exposes index-level container operations over element
// descriptors.
//
// Four bridges are provided:
//   - Array: dense dynamic array, indices [0, Num) always live
//   - Set: sparse hash set, live slots with holes below GetMaxIndex
//   - Map: sparse hash map of key/value pairs stored in one slot
//   - FixedArray: non-owning view of a fixed-length embedded array
//
// Every operation checks descriptor validity first and validates indices
// and arguments before touching storage. Scratch elements built to probe
// or convert arguments are destroyed on every exit path.
//
// Conversions keep the strictness of the native surface: Array reads are
// strict and writes lenient, FixedArray is strict both ways, Set and Map
// write leniently and read strictly.
package bridge
