package descriptor

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.bytecodealliance.org/wit"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
)

// element implements one WIT kind over arena memory.
// Every method except toScript and hash assumes the element at addr is live.
type element interface {
	// owns reports whether the element holds blocks outside its slot.
	owns() bool
	destroy(mem containers.Arena, addr uint32) error
	copy(mem containers.Arena, dst, src uint32) error
	hash(mem containers.Arena, addr uint32, d *xxhash.Digest) error
	equal(mem containers.Arena, a, b uint32) (bool, error)
	toScript(mem containers.Arena, addr uint32, strict bool, path []string) (any, error)
	fromScript(mem containers.Arena, value any, addr uint32, strict bool, path []string) error
}

type builder struct {
	calc *layout.Calculator
}

func (b builder) build(t wit.Type, path []string) (element, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return scalar{kind: kindBool, size: 1}, nil
	case wit.S8:
		return scalar{kind: kindSigned, size: 1}, nil
	case wit.U8:
		return scalar{kind: kindUnsigned, size: 1}, nil
	case wit.S16:
		return scalar{kind: kindSigned, size: 2}, nil
	case wit.U16:
		return scalar{kind: kindUnsigned, size: 2}, nil
	case wit.S32:
		return scalar{kind: kindSigned, size: 4}, nil
	case wit.U32:
		return scalar{kind: kindUnsigned, size: 4}, nil
	case wit.S64:
		return scalar{kind: kindSigned, size: 8}, nil
	case wit.U64:
		return scalar{kind: kindUnsigned, size: 8}, nil
	case wit.F32:
		return scalar{kind: kindFloat, size: 4}, nil
	case wit.F64:
		return scalar{kind: kindFloat, size: 8}, nil
	case wit.Char:
		return scalar{kind: kindChar, size: 4}, nil
	case wit.String:
		return stringElem{}, nil
	case *wit.TypeDef:
		return b.buildTypeDef(typ, path)
	default:
		return nil, errors.Unsupported(errors.PhaseDescriptor,
			fmt.Sprintf("%s: element type %s", strings.Join(path, "."), typeName(t)))
	}
}

func (b builder) buildTypeDef(t *wit.TypeDef, path []string) (element, error) {
	info := b.calc.Calculate(t)

	switch kind := t.Kind.(type) {
	case *wit.Record:
		if len(kind.Fields) == 0 {
			return nil, errors.Unsupported(errors.PhaseDescriptor, strings.Join(path, ".")+": empty record")
		}
		seq := sequence{named: true, fields: make([]field, len(kind.Fields))}
		for i, f := range kind.Fields {
			elem, err := b.build(f.Type, sub(path, f.Name))
			if err != nil {
				return nil, err
			}
			seq.fields[i] = field{
				elem: elem,
				name: f.Name,
				off:  info.Offsets[i],
				size: b.calc.Calculate(f.Type).Size,
			}
		}
		return seq, nil

	case *wit.Tuple:
		if len(kind.Types) == 0 {
			return nil, errors.Unsupported(errors.PhaseDescriptor, strings.Join(path, ".")+": empty tuple")
		}
		seq := sequence{fields: make([]field, len(kind.Types))}
		for i, mt := range kind.Types {
			elem, err := b.build(mt, sub(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			seq.fields[i] = field{
				elem: elem,
				off:  info.Offsets[i],
				size: b.calc.Calculate(mt).Size,
			}
		}
		return seq, nil

	case *wit.Enum:
		if len(kind.Cases) == 0 {
			return nil, errors.Unsupported(errors.PhaseDescriptor, strings.Join(path, ".")+": enum without cases")
		}
		e := enumElem{size: info.Size, cases: make([]string, len(kind.Cases))}
		for i, c := range kind.Cases {
			e.cases[i] = c.Name
		}
		return e, nil

	case *wit.Option:
		inner, err := b.build(kind.Type, sub(path, "some"))
		if err != nil {
			return nil, err
		}
		innerInfo := b.calc.Calculate(kind.Type)
		return optionElem{
			inner:     inner,
			payload:   info.Offsets[0],
			innerSize: innerInfo.Size,
		}, nil

	case wit.Type:
		return b.build(kind, path)

	default:
		return nil, errors.Unsupported(errors.PhaseDescriptor,
			fmt.Sprintf("%s: element kind %T", strings.Join(path, "."), kind))
	}
}

// typeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func rawCopy(mem containers.Arena, dst, src, size uint32) error {
	if size == 0 {
		return nil
	}
	data, err := mem.Read(src, size)
	if err != nil {
		return err
	}
	return mem.Write(dst, append([]byte(nil), data...))
}

func zero(mem containers.Arena, addr, size uint32) error {
	if size == 0 {
		return nil
	}
	return mem.Write(addr, make([]byte, size))
}

// sub extends path without sharing its backing array.
func sub(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
