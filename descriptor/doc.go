// Package descriptor describes container elements whose type is only known at run time.
//
// A Descriptor bundles everything a container needs to manage one element
// stored in arena memory: size and alignment, hashing and equality,
// construction and destruction, and conversion to and from script values.
//
// Descriptors are built from WIT types:
//
//	bool, s8..s64, u8..u64, f32, f64, char   fixed-width scalars
//	string                                   (ptr u32, len u32) owning a heap block
//	record, tuple                            fields at Canonical ABI offsets
//	enum                                     1, 2 or 4 byte discriminant
//	option<T>                                tag byte, payload live only while tag is 1
//
// # Strictness
//
// FromScript with strict=true accepts only lossless conversions. With
// strict=false it truncates floats, wraps integers, parses numeric strings,
// formats scalars into strings and ignores unknown record fields.
//
// ToScript with strict=true returns the canonical Go type of the element
// (uint8, int32, float32, rune, string, map[string]any, []any). With
// strict=false integers widen to int64, floats to float64 and chars become
// one-rune strings.
//
// # Ownership
//
// A Registry owns descriptors by name. Releasing a name invalidates the
// descriptor and every dimensioned view of it; IsValid reports false from
// then on and containers refuse to touch their storage.
package descriptor
