package descriptor

import (
	"fmt"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/script-containers/errors"
)

var primitiveNames = map[string]wit.Type{
	"bool":   wit.Bool{},
	"s8":     wit.S8{},
	"u8":     wit.U8{},
	"s16":    wit.S16{},
	"u16":    wit.U16{},
	"s32":    wit.S32{},
	"u32":    wit.U32{},
	"s64":    wit.S64{},
	"u64":    wit.U64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// ParseTypeName parses a WIT-like type expression:
//
//	u32
//	option<string>
//	tuple<u8, s64>
//	record<x: f32, y: f32>
//	enum<red, green, blue>
func ParseTypeName(s string) (wit.Type, error) {
	p := &typeParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseDescriptor, errors.KindInvalidInput).
		Detail("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...)).
		Build()
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(c byte) error {
	if !p.accept(c) {
		return p.errorf("expected %q", c)
	}
	return nil
}

func (p *typeParser) parseType() (wit.Type, error) {
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type name")
	}
	if t, ok := primitiveNames[name]; ok {
		return t, nil
	}

	if err := p.expect('<'); err != nil {
		return nil, err
	}

	var kind wit.TypeDefKind
	switch name {
	case "option":
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		kind = &wit.Option{Type: inner}

	case "tuple":
		tuple := &wit.Tuple{}
		for {
			member, err := p.parseType()
			if err != nil {
				return nil, err
			}
			tuple.Types = append(tuple.Types, member)
			if !p.accept(',') {
				break
			}
		}
		kind = tuple

	case "record":
		record := &wit.Record{}
		for {
			fieldName := p.ident()
			if fieldName == "" {
				return nil, p.errorf("expected a field name")
			}
			if err := p.expect(':'); err != nil {
				return nil, err
			}
			ft, err := p.parseType()
			if err != nil {
				return nil, err
			}
			record.Fields = append(record.Fields, wit.Field{Name: fieldName, Type: ft})
			if !p.accept(',') {
				break
			}
		}
		kind = record

	case "enum":
		enum := &wit.Enum{}
		for {
			c := p.ident()
			if c == "" {
				return nil, p.errorf("expected a case name")
			}
			enum.Cases = append(enum.Cases, wit.EnumCase{Name: c})
			if !p.accept(',') {
				break
			}
		}
		kind = enum

	default:
		return nil, p.errorf("unknown type %q", name)
	}

	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return &wit.TypeDef{Kind: kind}, nil
}

// TypeString renders t in the syntax accepted by ParseTypeName.
func TypeString(t wit.Type) string {
	for name, prim := range primitiveNames {
		if prim == t {
			return name
		}
	}
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return typeName(t)
	}

	switch kind := td.Kind.(type) {
	case *wit.Option:
		return "option<" + TypeString(kind.Type) + ">"
	case *wit.Tuple:
		parts := make([]string, len(kind.Types))
		for i, m := range kind.Types {
			parts[i] = TypeString(m)
		}
		return "tuple<" + strings.Join(parts, ", ") + ">"
	case *wit.Record:
		parts := make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			parts[i] = f.Name + ": " + TypeString(f.Type)
		}
		return "record<" + strings.Join(parts, ", ") + ">"
	case *wit.Enum:
		parts := make([]string, len(kind.Cases))
		for i, c := range kind.Cases {
			parts[i] = c.Name
		}
		return "enum<" + strings.Join(parts, ", ") + ">"
	case wit.Type:
		return TypeString(kind)
	default:
		return typeName(kind)
	}
}
