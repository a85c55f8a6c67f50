package descriptor

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/internal/coerce"
)

const (
	canonicalNaN32 = 0x7fc00000
	canonicalNaN64 = 0x7ff8000000000000
)

type scalarKind uint8

const (
	kindBool scalarKind = iota
	kindSigned
	kindUnsigned
	kindFloat
	kindChar
)

// scalar is a fixed-width value of 1, 2, 4 or 8 bytes.
type scalar struct {
	kind scalarKind
	size uint32
}

func (s scalar) owns() bool { return false }

func (s scalar) destroy(containers.Arena, uint32) error { return nil }

func (s scalar) copy(mem containers.Arena, dst, src uint32) error {
	return rawCopy(mem, dst, src, s.size)
}

func (s scalar) witName() string {
	switch s.kind {
	case kindBool:
		return "bool"
	case kindSigned:
		return [...]string{1: "s8", 2: "s16", 4: "s32", 8: "s64"}[s.size]
	case kindUnsigned:
		return [...]string{1: "u8", 2: "u16", 4: "u32", 8: "u64"}[s.size]
	case kindFloat:
		if s.size == 4 {
			return "f32"
		}
		return "f64"
	default:
		return "char"
	}
}

func (s scalar) bits() uint {
	return uint(s.size) * 8
}

func (s scalar) read(mem containers.Arena, addr uint32) (uint64, error) {
	switch s.size {
	case 1:
		v, err := mem.ReadU8(addr)
		return uint64(v), err
	case 2:
		v, err := mem.ReadU16(addr)
		return uint64(v), err
	case 4:
		v, err := mem.ReadU32(addr)
		return uint64(v), err
	default:
		return mem.ReadU64(addr)
	}
}

func (s scalar) write(mem containers.Arena, addr uint32, v uint64) error {
	switch s.size {
	case 1:
		return mem.WriteU8(addr, uint8(v))
	case 2:
		return mem.WriteU16(addr, uint16(v))
	case 4:
		return mem.WriteU32(addr, uint32(v))
	default:
		return mem.WriteU64(addr, v)
	}
}

// canonical maps raw bits to the form used for hashing and equality:
// bools become 0 or 1, every NaN collapses to one pattern and -0 becomes +0.
func (s scalar) canonical(v uint64) uint64 {
	switch s.kind {
	case kindBool:
		if v != 0 {
			return 1
		}
	case kindFloat:
		if s.size == 4 {
			f := math.Float32frombits(uint32(v))
			if f != f {
				return canonicalNaN32
			}
			if f == 0 {
				return 0
			}
		} else {
			f := math.Float64frombits(v)
			if f != f {
				return canonicalNaN64
			}
			if f == 0 {
				return 0
			}
		}
	}
	return v
}

func (s scalar) hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error {
	v, err := s.read(mem, addr)
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.canonical(v))
	_, _ = d.Write(buf[:s.size])
	return nil
}

func (s scalar) equal(mem containers.Arena, a, b uint32) (bool, error) {
	va, err := s.read(mem, a)
	if err != nil {
		return false, err
	}
	vb, err := s.read(mem, b)
	if err != nil {
		return false, err
	}
	return s.canonical(va) == s.canonical(vb), nil
}

func (s scalar) toScript(mem containers.Arena, addr uint32, strict bool, path []string) (any, error) {
	v, err := s.read(mem, addr)
	if err != nil {
		return nil, err
	}

	switch s.kind {
	case kindBool:
		return v != 0, nil

	case kindSigned:
		// sign-extend from the stored width
		shift := 64 - s.bits()
		i := int64(v<<shift) >> shift
		if !strict {
			return i, nil
		}
		switch s.size {
		case 1:
			return int8(i), nil
		case 2:
			return int16(i), nil
		case 4:
			return int32(i), nil
		default:
			return i, nil
		}

	case kindUnsigned:
		if !strict {
			if v > math.MaxInt64 {
				return v, nil
			}
			return int64(v), nil
		}
		switch s.size {
		case 1:
			return uint8(v), nil
		case 2:
			return uint16(v), nil
		case 4:
			return uint32(v), nil
		default:
			return v, nil
		}

	case kindFloat:
		if s.size == 4 {
			f := math.Float32frombits(uint32(v))
			if strict {
				return f, nil
			}
			return float64(f), nil
		}
		return math.Float64frombits(v), nil

	default:
		r := rune(uint32(v))
		if !validChar(r) {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(path...).
				Detail("invalid Unicode scalar value: 0x%X", uint32(v)).
				Build()
		}
		if strict {
			return r, nil
		}
		return string(r), nil
	}
}

func (s scalar) fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error {
	var bits uint64
	var err error
	if strict {
		bits, err = s.strictBits(value, path)
	} else {
		bits, err = s.lenientBits(value, path)
	}
	if err != nil {
		return err
	}
	return s.write(mem, addr, bits)
}

func (s scalar) strictBits(value any, path []string) (uint64, error) {
	switch s.kind {
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "bool")
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case kindSigned:
		i, ok := coerce.Signed(value, s.bits())
		if !ok {
			return 0, s.integerError(value, path)
		}
		return uint64(i), nil

	case kindUnsigned:
		u, ok := coerce.Unsigned(value, s.bits())
		if !ok {
			return 0, s.integerError(value, path)
		}
		return u, nil

	case kindFloat:
		if s.size == 4 {
			f, ok := coerce.Float32(value)
			if !ok {
				return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "f32")
			}
			return canonicalFloat32(f), nil
		}
		f, ok := coerce.Float64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "f64")
		}
		return canonicalFloat64(f), nil

	default:
		var r rune
		switch v := value.(type) {
		case rune:
			r = v
		case string:
			if utf8.RuneCountInString(v) != 1 {
				return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
					Path(path...).
					WitType("char").
					Detail("string %q is not a single character", v).
					Build()
			}
			r, _ = utf8.DecodeRuneInString(v)
		default:
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "char")
		}
		if !validChar(r) {
			return 0, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(path...).
				Detail("invalid Unicode scalar value: 0x%X", r).
				Build()
		}
		return uint64(uint32(r)), nil
	}
}

// integerError distinguishes integral values that do not fit from values
// that are not integers at all.
func (s scalar) integerError(value any, path []string) error {
	_, isInt := coerce.Int64(value)
	_, isUint := coerce.Uint64(value)
	if isInt || isUint {
		return errors.Overflow(errors.PhaseEncode, path, value, s.witName())
	}
	return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), s.witName())
}

func (s scalar) lenientBits(value any, path []string) (uint64, error) {
	switch s.kind {
	case kindBool:
		b, ok := coerce.LenientBool(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "bool")
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case kindSigned, kindUnsigned:
		u, ok := coerce.LenientUint64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), s.witName())
		}
		if s.size < 8 {
			u &= uint64(1)<<s.bits() - 1
		}
		return u, nil

	case kindFloat:
		f, ok := coerce.LenientFloat64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), s.witName())
		}
		if s.size == 4 {
			return canonicalFloat32(float32(f)), nil
		}
		return canonicalFloat64(f), nil

	default:
		var r rune
		if str, ok := value.(string); ok {
			r, _ = utf8.DecodeRuneInString(str)
			if str == "" {
				r = 0
			}
		} else {
			u, ok := coerce.LenientUint64(value)
			if !ok {
				return 0, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "char")
			}
			r = rune(uint32(u))
		}
		if !validChar(r) {
			r = utf8.RuneError
		}
		return uint64(uint32(r)), nil
	}
}

func canonicalFloat32(f float32) uint64 {
	if f != f {
		return canonicalNaN32
	}
	return uint64(math.Float32bits(f))
}

func canonicalFloat64(f float64) uint64 {
	if f != f {
		return canonicalNaN64
	}
	return math.Float64bits(f)
}

// validChar rejects surrogates (0xD800-0xDFFF) and values >= 0x110000.
func validChar(r rune) bool {
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	return r >= 0 && r < 0x110000
}
