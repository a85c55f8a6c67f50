// Package memory provides native buffer backends for container storage.
//
// Two memories are available:
//   - Linear: an in-process, growable byte slice
//   - Wazero: an adapter over a wazero module's exported linear memory
//
// InstantiateGuest creates a minimal wazero module that exports nothing but
// a memory, for hosts that want container storage inside a guest.
//
// Heap turns any growable memory into a containers.Arena by managing its
// address space with a first-fit free list. Container slots and the blocks
// owned by elements (string contents, for example) are all carved from it.
//
// All multi-byte values are little-endian. Offsets are uint32, and address 0
// is reserved as null.
package memory
