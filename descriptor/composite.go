package descriptor

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/internal/coerce"
)

type field struct {
	elem element
	name string
	off  uint32
	size uint32
}

// sequence is a record (named) or tuple: fields at fixed offsets.
type sequence struct {
	fields []field
	named  bool
}

func (s sequence) owns() bool {
	for _, f := range s.fields {
		if f.elem.owns() {
			return true
		}
	}
	return false
}

func (s sequence) destroy(mem containers.Arena, addr uint32) error {
	for _, f := range s.fields {
		if !f.elem.owns() {
			continue
		}
		if err := f.elem.destroy(mem, addr+f.off); err != nil {
			return err
		}
	}
	return nil
}

func (s sequence) copy(mem containers.Arena, dst, src uint32) error {
	for _, f := range s.fields {
		if err := f.elem.copy(mem, dst+f.off, src+f.off); err != nil {
			return err
		}
	}
	return nil
}

func (s sequence) hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error {
	for _, f := range s.fields {
		if err := f.elem.hash(mem, addr+f.off, d); err != nil {
			return err
		}
	}
	return nil
}

func (s sequence) equal(mem containers.Arena, a, b uint32) (bool, error) {
	for _, f := range s.fields {
		eq, err := f.elem.equal(mem, a+f.off, b+f.off)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func (s sequence) label(i int) string {
	if s.named {
		return s.fields[i].name
	}
	return strconv.Itoa(i)
}

func (s sequence) toScript(mem containers.Arena, addr uint32, strict bool, path []string) (any, error) {
	if s.named {
		out := make(map[string]any, len(s.fields))
		for i, f := range s.fields {
			v, err := f.elem.toScript(mem, addr+f.off, strict, sub(path, s.label(i)))
			if err != nil {
				return nil, err
			}
			out[f.name] = v
		}
		return out, nil
	}

	out := make([]any, len(s.fields))
	for i, f := range s.fields {
		v, err := f.elem.toScript(mem, addr+f.off, strict, sub(path, s.label(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s sequence) fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	if s.named {
		return s.fromRecord(mem, value, addr, strict, path)
	}
	return s.fromTuple(mem, value, addr, strict, path)
}

// fromRecord assigns fields present in a map. In strict mode the key set
// must match the record exactly and is checked before anything is written.
func (s sequence) fromRecord(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	m, ok := value.(map[string]any)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "record")
	}

	if strict {
		for _, f := range s.fields {
			if _, ok := m[f.name]; !ok {
				return errors.FieldMissing(errors.PhaseEncode, path, f.name)
			}
		}
		if len(m) != len(s.fields) {
			for k := range m {
				if !s.hasField(k) {
					return errors.FieldUnknown(errors.PhaseEncode, path, k)
				}
			}
		}
	}

	for _, f := range s.fields {
		v, ok := m[f.name]
		if !ok {
			continue
		}
		if err := f.elem.fromScript(mem, v, addr+f.off, strict, sub(path, f.name)); err != nil {
			return err
		}
	}
	return nil
}

func (s sequence) hasField(name string) bool {
	for _, f := range s.fields {
		if f.name == name {
			return true
		}
	}
	return false
}

func (s sequence) fromTuple(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	items, ok := value.([]any)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "tuple")
	}
	if strict && len(items) != len(s.fields) {
		return errors.InvalidData(errors.PhaseEncode, path,
			fmt.Sprintf("tuple expects %d members, got %d", len(s.fields), len(items)))
	}

	for i, f := range s.fields {
		if i >= len(items) {
			break
		}
		if err := f.elem.fromScript(mem, items[i], addr+f.off, strict, sub(path, s.label(i))); err != nil {
			return err
		}
	}
	return nil
}

// enumElem stores the case index in a 1, 2 or 4 byte discriminant.
type enumElem struct {
	cases []string
	size  uint32
}

func (e enumElem) owns() bool { return false }

func (e enumElem) destroy(containers.Arena, uint32) error { return nil }

func (e enumElem) copy(mem containers.Arena, dst, src uint32) error {
	return rawCopy(mem, dst, src, e.size)
}

func (e enumElem) read(mem containers.Arena, addr uint32) (uint32, error) {
	switch e.size {
	case 1:
		v, err := mem.ReadU8(addr)
		return uint32(v), err
	case 2:
		v, err := mem.ReadU16(addr)
		return uint32(v), err
	default:
		return mem.ReadU32(addr)
	}
}

func (e enumElem) write(mem containers.Arena, addr, v uint32) error {
	switch e.size {
	case 1:
		return mem.WriteU8(addr, uint8(v))
	case 2:
		return mem.WriteU16(addr, uint16(v))
	default:
		return mem.WriteU32(addr, v)
	}
}

func (e enumElem) hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error {
	v, err := e.read(mem, addr)
	if err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = d.Write(buf[:])
	return nil
}

func (e enumElem) equal(mem containers.Arena, a, b uint32) (bool, error) {
	va, err := e.read(mem, a)
	if err != nil {
		return false, err
	}
	vb, err := e.read(mem, b)
	if err != nil {
		return false, err
	}
	return va == vb, nil
}

func (e enumElem) toScript(mem containers.Arena, addr uint32, _ bool, path []string) (any, error) {
	v, err := e.read(mem, addr)
	if err != nil {
		return nil, err
	}
	if v >= uint32(len(e.cases)) {
		return nil, errors.InvalidEnum(errors.PhaseDecode, path, v, "enum")
	}
	return e.cases[v], nil
}

// fromScript accepts a case name or a case index.
func (e enumElem) fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	if name, ok := value.(string); ok {
		for i, c := range e.cases {
			if c == name {
				return e.write(mem, addr, uint32(i))
			}
		}
		if strict {
			return errors.InvalidEnum(errors.PhaseEncode, path, value, "enum")
		}
	}

	var idx uint64
	var ok bool
	if strict {
		idx, ok = coerce.Unsigned(value, 32)
	} else {
		var f float64
		f, ok = coerce.LenientFloat64(value)
		ok = ok && f >= 0 && f < float64(len(e.cases))
		idx = uint64(f)
	}
	if !ok || idx >= uint64(len(e.cases)) {
		return errors.InvalidEnum(errors.PhaseEncode, path, value, "enum")
	}
	return e.write(mem, addr, uint32(idx))
}

// optionElem is a tag byte followed by a payload that is live only while
// the tag is 1. nil is the script form of none.
type optionElem struct {
	inner     element
	payload   uint32
	innerSize uint32
}

func (o optionElem) owns() bool { return o.inner.owns() }

func (o optionElem) tag(mem containers.Arena, addr uint32) (bool, error) {
	t, err := mem.ReadU8(addr)
	return t != 0, err
}

func (o optionElem) destroy(mem containers.Arena, addr uint32) error {
	some, err := o.tag(mem, addr)
	if err != nil || !some {
		return err
	}
	return o.inner.destroy(mem, addr+o.payload)
}

// clear makes a live option none, destroying its payload first.
func (o optionElem) clear(mem containers.Arena, addr uint32) error {
	if err := o.destroy(mem, addr); err != nil {
		return err
	}
	return mem.WriteU8(addr, 0)
}

// fill makes a none option some with a default payload.
func (o optionElem) fill(mem containers.Arena, addr uint32) error {
	if err := zero(mem, addr+o.payload, o.innerSize); err != nil {
		return err
	}
	return mem.WriteU8(addr, 1)
}

func (o optionElem) copy(mem containers.Arena, dst, src uint32) error {
	srcSome, err := o.tag(mem, src)
	if err != nil {
		return err
	}
	if !srcSome {
		return o.clear(mem, dst)
	}
	dstSome, err := o.tag(mem, dst)
	if err != nil {
		return err
	}
	if !dstSome {
		if err := o.fill(mem, dst); err != nil {
			return err
		}
	}
	return o.inner.copy(mem, dst+o.payload, src+o.payload)
}

func (o optionElem) hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error {
	some, err := o.tag(mem, addr)
	if err != nil {
		return err
	}
	if !some {
		_, _ = d.Write([]byte{0})
		return nil
	}
	_, _ = d.Write([]byte{1})
	return o.inner.hash(mem, addr+o.payload, d)
}

func (o optionElem) equal(mem containers.Arena, a, b uint32) (bool, error) {
	sa, err := o.tag(mem, a)
	if err != nil {
		return false, err
	}
	sb, err := o.tag(mem, b)
	if err != nil {
		return false, err
	}
	if sa != sb {
		return false, nil
	}
	if !sa {
		return true, nil
	}
	return o.inner.equal(mem, a+o.payload, b+o.payload)
}

func (o optionElem) toScript(mem containers.Arena, addr uint32, strict bool, path []string) (any, error) {
	some, err := o.tag(mem, addr)
	if err != nil || !some {
		return nil, err
	}
	return o.inner.toScript(mem, addr+o.payload, strict, path)
}

func (o optionElem) fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	if value == nil {
		return o.clear(mem, addr)
	}

	wasSome, err := o.tag(mem, addr)
	if err != nil {
		return err
	}
	if !wasSome {
		if err := o.fill(mem, addr); err != nil {
			return err
		}
	}

	if err := o.inner.fromScript(mem, value, addr+o.payload, strict, path); err != nil {
		if !wasSome {
			// undo the fill so the option stays none
			_ = o.clear(mem, addr)
		}
		return err
	}
	return nil
}
