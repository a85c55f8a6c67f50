package layout

import (
	"fmt"

	"github.com/wippyai/script-containers/errors"
)

// PairPolicy selects how a key and value share one map slot.
// It must match the native map representation being targeted.
type PairPolicy uint8

const (
	// PairCompact places the key at offset 0, the value right after it.
	PairCompact PairPolicy = iota
	// PairLegacy places the value first and the key at a fixed offset after it.
	PairLegacy
)

func (p PairPolicy) String() string {
	switch p {
	case PairCompact:
		return "compact"
	case PairLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("PairPolicy(%d)", uint8(p))
	}
}

// ParsePairPolicy parses "compact" or "legacy".
func ParsePairPolicy(s string) (PairPolicy, error) {
	switch s {
	case "compact", "":
		return PairCompact, nil
	case "legacy":
		return PairLegacy, nil
	default:
		return 0, errors.InvalidInput(errors.PhaseLayout, fmt.Sprintf("unknown pair policy %q", s))
	}
}

// Pair locates a key and a value inside one slot.
type Pair struct {
	SlotSize      uint32
	SlotAlignment uint32
	KeyOffset     uint32
	ValueOffset   uint32
	Policy        PairPolicy
}

// NewPair derives the pair layout from key and value size/alignment.
func NewPair(policy PairPolicy, keySize, keyAlign, valueSize, valueAlign uint32) (Pair, error) {
	if !IsPow2(keyAlign) || !IsPow2(valueAlign) {
		return Pair{}, errors.InvalidInput(errors.PhaseLayout,
			fmt.Sprintf("alignments must be powers of two (key %d, value %d)", keyAlign, valueAlign))
	}

	p := Pair{
		SlotAlignment: maxU32(keyAlign, valueAlign),
		Policy:        policy,
	}

	var end uint32
	switch policy {
	case PairCompact:
		p.KeyOffset = 0
		p.ValueOffset = AlignTo(keySize, valueAlign)
		end = p.ValueOffset + valueSize
	case PairLegacy:
		p.ValueOffset = 0
		p.KeyOffset = AlignTo(valueSize, keyAlign)
		end = p.KeyOffset + keySize
	default:
		return Pair{}, errors.InvalidInput(errors.PhaseLayout, fmt.Sprintf("unknown pair policy %d", policy))
	}

	p.SlotSize = AlignTo(end, p.SlotAlignment)
	return p, nil
}
