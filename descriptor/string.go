package descriptor

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/internal/coerce"
)

// MaxStringSize bounds the content of a single string element.
const MaxStringSize = 1 << 30

// stringElem is (ptr u32, len u32). A non-empty string owns the len-byte
// block at ptr; the empty string is (0, 0) and owns nothing.
type stringElem struct{}

func (stringElem) owns() bool { return true }

func (stringElem) header(mem containers.Arena, addr uint32) (uint32, uint32, error) {
	ptr, err := mem.ReadU32(addr)
	if err != nil {
		return 0, 0, err
	}
	n, err := mem.ReadU32(addr + 4)
	if err != nil {
		return 0, 0, err
	}
	return ptr, n, nil
}

func (e stringElem) content(mem containers.Arena, addr uint32) ([]byte, error) {
	ptr, n, err := e.header(mem, addr)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return mem.Read(ptr, n)
}

func (e stringElem) destroy(mem containers.Arena, addr uint32) error {
	ptr, n, err := e.header(mem, addr)
	if err != nil {
		return err
	}
	if n > 0 {
		mem.Free(ptr, n, 1)
	}
	return nil
}

// assign replaces the content of the live string at addr. The old block is
// released only after the new one is in place.
func (e stringElem) assign(mem containers.Arena, addr uint32, data []byte, path []string) error {
	if len(data) > MaxStringSize {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("string of %d bytes exceeds limit %d", len(data), MaxStringSize).
			Build()
	}
	oldPtr, oldLen, err := e.header(mem, addr)
	if err != nil {
		return err
	}

	var ptr uint32
	n := uint32(len(data))
	if n > 0 {
		ptr, err = mem.Alloc(n, 1)
		if err != nil {
			return errors.New(errors.PhaseEncode, errors.KindAllocation).
				Path(path...).
				Detail("failed to allocate %d bytes for string data", n).
				Cause(err).
				Build()
		}
		if err := mem.Write(ptr, data); err != nil {
			mem.Free(ptr, n, 1)
			return err
		}
	}

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], ptr)
	binary.LittleEndian.PutUint32(hdr[4:], n)
	if err := mem.Write(addr, hdr[:]); err != nil {
		if n > 0 {
			mem.Free(ptr, n, 1)
		}
		return err
	}

	if oldLen > 0 {
		mem.Free(oldPtr, oldLen, 1)
	}
	return nil
}

func (e stringElem) copy(mem containers.Arena, dst, src uint32) error {
	data, err := e.content(mem, src)
	if err != nil {
		return err
	}
	// content aliases memory that Alloc may grow
	return e.assign(mem, dst, append([]byte(nil), data...), nil)
}

func (e stringElem) hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error {
	data, err := e.content(mem, addr)
	if err != nil {
		return err
	}
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(data)))
	_, _ = d.Write(n[:])
	_, _ = d.Write(data)
	return nil
}

func (e stringElem) equal(mem containers.Arena, a, b uint32) (bool, error) {
	da, err := e.content(mem, a)
	if err != nil {
		return false, err
	}
	db, err := e.content(mem, b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

func (e stringElem) toScript(mem containers.Arena, addr uint32, strict bool, path []string) (any, error) {
	data, err := e.content(mem, addr)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		if strict {
			return nil, errors.InvalidUTF8(errors.PhaseDecode, path, data)
		}
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	return string(data), nil
}

func (e stringElem) fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	var s string
	if strict {
		v, ok := value.(string)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "string")
		}
		if !utf8.ValidString(v) {
			return errors.InvalidUTF8(errors.PhaseEncode, path, []byte(v))
		}
		s = v
	} else {
		v, ok := coerce.FormatScalar(value)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "string")
		}
		s = strings.ToValidUTF8(v, "\uFFFD")
	}
	return e.assign(mem, addr, []byte(s), path)
}
