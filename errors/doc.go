// Package errors provides structured error types for the container bridge.
//
// Errors are categorized by Phase (which component failed) and Kind (error category).
// The Error type includes rich context: field path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("point", "x").
//		GoType("string").
//		WitType("s32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for the container operation failures:
//
//	err := errors.IndexOutOfRange(errors.PhaseArray, 4, 2)
//	err := errors.KeyNotFound(errors.PhaseMap, "a")
//
// All errors implement the standard error interface and support errors.Is/As.
// HasKind matches a kind regardless of the phase that produced it.
package errors
