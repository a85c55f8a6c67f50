// Package layout computes sizes, alignments and offsets for container slots.
//
// Element layouts follow the Canonical ABI rules for WIT types:
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records and tuples: fields laid out sequentially with padding
//   - Enums: discriminant of 1, 2 or 4 bytes
//   - Options: 1-byte tag followed by the aligned payload
//   - Strings: (pointer, length) pair, content in a separate block
//
// Two container slot shapes are derived from element layouts:
//
//	Set slot:   [element | pad | hashNextId i32 | hashIndex i32 | pad]
//	Map slot:   set slot whose element is a key/value pair
//
// The pair shape is chosen once per deployment with a PairPolicy:
//
//	PairCompact: [key | pad | value]   key offset 0
//	PairLegacy:  [value | pad | key]   key at a fixed non-zero offset
package layout
