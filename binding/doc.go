// Package binding exposes bridged containers to a scripting host as
// objects with named operations.
//
// A Surface owns the descriptor registry and the arena. It creates bound
// objects whose Call method dispatches by operation name:
//
//	obj, _ := surface.NewMap("string", "s32")
//	obj.Call("Add", "a", 1)
//	v, _ := obj.Call("Get", "a") // int32(1)
//
// Argument counts are checked before any memory access. Index arguments
// are coerced the way script engines convert to int32. Core errors reach
// the caller as *Exception values carrying a short message.
package binding
