package memory

import (
	"encoding/binary"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
)

// PageSize is the granularity of memory growth (64 KiB).
const PageSize = 65536

// Growable is a memory whose size can be increased in whole pages.
type Growable interface {
	containers.Memory
	containers.MemorySizer
	// Grow adds deltaPages pages and returns the previous page count.
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Linear is an in-process linear memory backed by a byte slice.
type Linear struct {
	data     []byte
	maxPages uint32
}

var _ Growable = (*Linear)(nil)

// NewLinear creates a memory of the given initial size in pages.
// maxPages of 0 means the memory may grow up to the 32-bit address limit.
func NewLinear(pages, maxPages uint32) *Linear {
	if maxPages == 0 || maxPages > 65536 {
		maxPages = 65536
	}
	if pages > maxPages {
		pages = maxPages
	}
	return &Linear{
		data:     make([]byte, int(pages)*PageSize),
		maxPages: maxPages,
	}
}

// Size returns the memory size in bytes.
func (m *Linear) Size() uint32 {
	return uint32(len(m.data))
}

// Pages returns the memory size in pages.
func (m *Linear) Pages() uint32 {
	return uint32(len(m.data) / PageSize)
}

// Grow extends the memory by deltaPages zeroed pages.
func (m *Linear) Grow(deltaPages uint32) (uint32, bool) {
	prev := m.Pages()
	if deltaPages == 0 {
		return prev, true
	}
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return prev, false
	}
	m.data = append(m.data, make([]byte, int(deltaPages)*PageSize)...)
	return prev, true
}

func (m *Linear) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, length, uint32(len(m.data)))
	}
	return nil
}

// Read returns a view of length bytes at offset. The view aliases the memory.
func (m *Linear) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length : offset+length], nil
}

// Write copies data into memory at offset.
func (m *Linear) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *Linear) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *Linear) ReadU16(offset uint32) (uint16, error) {
	if err := m.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[offset:]), nil
}

func (m *Linear) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *Linear) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *Linear) WriteU8(offset uint32, value uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.data[offset] = value
	return nil
}

func (m *Linear) WriteU16(offset uint32, value uint16) error {
	if err := m.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[offset:], value)
	return nil
}

func (m *Linear) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *Linear) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}
