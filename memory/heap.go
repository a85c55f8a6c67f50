package memory

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// HeapOptions configures a Heap.
type HeapOptions struct {
	// Base is the first address the heap may hand out. Addresses below it,
	// including the null address 0, are never allocated.
	Base uint32
	// MaxPages caps the backing memory size. 0 means no cap beyond the memory's own.
	MaxPages uint32
}

// DefaultHeapOptions returns a heap starting at address 16 with no page cap.
func DefaultHeapOptions() HeapOptions {
	return HeapOptions{Base: 16}
}

type span struct {
	addr uint32
	size uint32
}

func (s span) end() uint64 {
	return uint64(s.addr) + uint64(s.size)
}

// Heap is a first-fit allocator over a growable memory.
// Freed blocks are coalesced with their neighbours. Heap is not thread-safe.
type Heap struct {
	containers.Memory
	mem          Growable
	live         map[uint32]uint32
	free         []span
	opts         HeapOptions
	inUse        uint32
	invalidFrees int
}

var _ containers.Arena = (*Heap)(nil)

// NewHeap creates a heap managing mem from opts.Base to the end of memory.
func NewHeap(mem Growable, opts HeapOptions) (*Heap, error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseMemory, "heap requires a memory")
	}
	if opts.Base == 0 {
		opts.Base = 1
	}
	h := &Heap{
		Memory: mem,
		mem:    mem,
		live:     make(map[uint32]uint32),
		opts:     opts,
	}
	if size := mem.Size(); size > opts.Base {
		h.free = append(h.free, span{addr: opts.Base, size: size - opts.Base})
	}
	return h, nil
}

// NewHeapWithDefaults creates a heap with DefaultHeapOptions.
func NewHeapWithDefaults(mem Growable) (*Heap, error) {
	return NewHeap(mem, DefaultHeapOptions())
}

// Alloc returns the address of a new block of size bytes aligned to align.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, errors.InvalidInput(errors.PhaseMemory, "zero-size allocation")
	}
	if align == 0 {
		align = 1
	}
	if !layout.IsPow2(align) {
		return 0, errors.InvalidInput(errors.PhaseMemory, fmt.Sprintf("alignment %d is not a power of two", align))
	}

	for {
		if ptr, ok := h.take(size, align); ok {
			h.live[ptr] = size
			h.inUse += size
			return ptr, nil
		}
		if err := h.grow(size, align); err != nil {
			return 0, err
		}
	}
}

// take carves size bytes out of the first free span that fits.
func (h *Heap) take(size, align uint32) (uint32, bool) {
	for i, s := range h.free {
		start := layout.AlignTo(s.addr, align)
		if start < s.addr || uint64(start)+uint64(size) > s.end() {
			continue
		}

		var repl []span
		if start > s.addr {
			repl = append(repl, span{addr: s.addr, size: start - s.addr})
		}
		if tail := s.end() - (uint64(start) + uint64(size)); tail > 0 {
			repl = append(repl, span{addr: start + size, size: uint32(tail)})
		}

		rest := append(repl, h.free[i+1:]...)
		h.free = append(h.free[:i], rest...)
		return start, true
	}
	return 0, false
}

func (h *Heap) grow(size, align uint32) error {
	need := uint64(size) + uint64(align)
	pages := uint32((need + PageSize - 1) / PageSize)

	if h.opts.MaxPages > 0 {
		current := h.Size() / PageSize
		if uint64(current)+uint64(pages) > uint64(h.opts.MaxPages) {
			return errors.AllocationFailed(errors.PhaseMemory, size, align)
		}
	}

	prev, ok := h.mem.Grow(pages)
	if !ok {
		return errors.AllocationFailed(errors.PhaseMemory, size, align)
	}

	start := prev * PageSize
	if start < h.opts.Base {
		start = h.opts.Base
	}
	h.insertFree(span{addr: start, size: h.Size() - start})
	return nil
}

// Free releases a block returned by Alloc. Unknown pointers and size
// mismatches are counted as invalid frees and otherwise ignored.
func (h *Heap) Free(ptr, size, align uint32) {
	got, ok := h.live[ptr]
	if !ok || got != size {
		h.invalidFrees++
		Logger().Warn("invalid free",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Uint32("align", align),
			zap.Bool("known", ok))
		return
	}
	delete(h.live, ptr)
	h.inUse -= size
	h.insertFree(span{addr: ptr, size: size})
}

func (h *Heap) insertFree(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].addr >= s.addr })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	if i+1 < len(h.free) && h.free[i].end() == uint64(h.free[i+1].addr) {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].end() == uint64(h.free[i].addr) {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// Size returns the size of the backing memory in bytes.
func (h *Heap) Size() uint32 {
	return h.mem.Size()
}

// Live returns the number of blocks currently allocated.
func (h *Heap) Live() int {
	return len(h.live)
}

// InUse returns the number of bytes currently allocated.
func (h *Heap) InUse() uint32 {
	return h.inUse
}

// InvalidFrees returns how many Free calls named no live block.
func (h *Heap) InvalidFrees() int {
	return h.invalidFrees
}

// FreeSpans returns the number of free spans, for fragmentation checks.
func (h *Heap) FreeSpans() int {
	return len(h.free)
}
