package layout

import (
	"go.bytecodealliance.org/wit"
)

// Info is the in-memory layout of one element.
// Offsets lists field (record) or member (tuple) offsets in declaration order.
type Info struct {
	FieldOffs map[string]uint32
	Offsets   []uint32
	Size      uint32
	Align     uint32
}

// Calculator computes element layouts, caching type definitions.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		info = c.sequence(types)
		info.FieldOffs = make(map[string]uint32, len(kind.Fields))
		for i, f := range kind.Fields {
			info.FieldOffs[f.Name] = info.Offsets[i]
		}
	case *wit.Tuple:
		info = c.sequence(kind.Types)
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Option:
		info = c.calculateOption(kind)
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// sequence lays types out one after another, each at its own alignment.
func (c *Calculator) sequence(types []wit.Type) Info {
	if len(types) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(types))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, typ := range types {
		elem := c.Calculate(typ)
		offset = AlignTo(offset, elem.Align)
		offsets[i] = offset
		maxAlign = maxU32(maxAlign, elem.Align)
		offset += elem.Size
	}

	return Info{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}

// OptionPayloadOffset returns where the payload of option<T> starts.
func OptionPayloadOffset(payloadAlign uint32) uint32 {
	return AlignTo(1, payloadAlign)
}

func (c *Calculator) calculateOption(o *wit.Option) Info {
	inner := c.Calculate(o.Type)

	maxAlign := maxU32(inner.Align, 1)
	payloadOffset := OptionPayloadOffset(inner.Align)

	return Info{
		Size:    AlignTo(payloadOffset+inner.Size, maxAlign),
		Align:   maxAlign,
		Offsets: []uint32{payloadOffset},
	}
}
