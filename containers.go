package containers

// IndexNone is returned by searches that found no matching slot.
// It is never a valid slot index.
const IndexNone int32 = -1

// Memory is a bounds-checked view over a native buffer.
// Slices returned by Read may alias the buffer and are invalid after any write or growth.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates blocks inside a Memory. Address 0 is never returned.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Arena is a memory together with the allocator that owns its address space.
// Every container slot and every block owned by an element lives in one arena.
type Arena interface {
	Memory
	Allocator
}
