// Package containers bridges a dynamically-typed script caller to natively
// laid-out container storage whose element shape is only known at run time.
//
// Element types are described by descriptors (size, alignment, hashing,
// equality, construction, destruction and script-value conversion). The
// bridges use them to drive four container shapes stored in raw arena
// memory: a dense dynamic array, a sparse hash set, a sparse hash map and a
// fixed-length embedded array.
//
// # Architecture Overview
//
//	containers/          Root package with Memory, Allocator and Arena interfaces
//	├── errors/          Structured error types
//	├── layout/          Size, alignment, pair and set slot layout
//	├── memory/          Linear and wazero-backed memories, heap allocator
//	├── descriptor/      Element descriptors built from WIT types
//	├── native/          Dense array, sparse set and sparse map storage
//	├── bridge/          Index-level bridges over the native containers
//	├── binding/         Named operations exposed to a script host
//	└── cmd/containers   Command line driver and interactive TUI
//
// # Quick Start
//
//	heap, _ := memory.NewHeap(memory.NewLinear(1, 0), memory.DefaultHeapOptions())
//	surface := binding.NewSurface(heap, binding.DefaultOptions())
//	defer surface.Close()
//
//	arr, _ := surface.NewArray("s32")
//	idx, _ := arr.Call("Add", 3, 7) // 0
//	n, _ := arr.Call("Num")         // 2
//	v, _ := arr.Call("Get", 1)      // int32(7)
//
// # Slot Lifecycle
//
// A slot is either empty or live. Live slots were initialized by their
// descriptor and not yet destroyed. Dense arrays keep [0, Num) live and
// contiguous; sparse sets and maps keep live slots inside [0, MaxIndex) with
// holes, so occupancy is queried per slot.
//
// # Thread Safety
//
// Containers are bound to one script context and are NOT thread-safe.
// Any address obtained during a call is invalid once the call returns.
package containers
