package layout

import (
	"testing"

	"github.com/wippyai/script-containers/errors"
)

func TestNewPair(t *testing.T) {
	tests := []struct {
		name                         string
		policy                       PairPolicy
		keySize, keyAlign            uint32
		valueSize, valueAlign        uint32
		slotSize, slotAlign          uint32
		keyOffset, valueOffset       uint32
	}{
		{"compact string to s32", PairCompact, 8, 4, 4, 4, 12, 4, 0, 8},
		{"compact u8 to u64", PairCompact, 1, 1, 8, 8, 16, 8, 0, 8},
		{"compact u64 to u8", PairCompact, 8, 8, 1, 1, 16, 8, 0, 8},
		{"legacy string to s32", PairLegacy, 8, 4, 4, 4, 12, 4, 4, 0},
		{"legacy u8 to u64", PairLegacy, 1, 1, 8, 8, 16, 8, 8, 0},
		{"compact zero-size value", PairCompact, 4, 4, 0, 1, 4, 4, 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPair(tc.policy, tc.keySize, tc.keyAlign, tc.valueSize, tc.valueAlign)
			if err != nil {
				t.Fatalf("NewPair: %v", err)
			}
			if p.SlotSize != tc.slotSize || p.SlotAlignment != tc.slotAlign {
				t.Errorf("slot: got %d/%d, want %d/%d", p.SlotSize, p.SlotAlignment, tc.slotSize, tc.slotAlign)
			}
			if p.KeyOffset != tc.keyOffset || p.ValueOffset != tc.valueOffset {
				t.Errorf("offsets: got key %d value %d, want key %d value %d",
					p.KeyOffset, p.ValueOffset, tc.keyOffset, tc.valueOffset)
			}
		})
	}
}

func TestNewPair_RejectsBadAlignment(t *testing.T) {
	_, err := NewPair(PairCompact, 4, 3, 4, 4)
	if !errors.HasKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestParsePairPolicy(t *testing.T) {
	for in, want := range map[string]PairPolicy{"": PairCompact, "compact": PairCompact, "legacy": PairLegacy} {
		got, err := ParsePairPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePairPolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePairPolicy("sideways"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if PairLegacy.String() != "legacy" {
		t.Errorf("String() = %q", PairLegacy.String())
	}
}

func TestNewSet(t *testing.T) {
	tests := []struct {
		name                  string
		elemSize, elemAlign   uint32
		size, align           uint32
		next, index           uint32
	}{
		{"u8", 1, 1, 12, 4, 4, 8},
		{"s32", 4, 4, 12, 4, 4, 8},
		{"string", 8, 4, 16, 4, 8, 12},
		{"u64", 8, 8, 16, 8, 8, 12},
		{"record 12", 12, 8, 24, 8, 12, 16},
		{"zero size", 0, 1, 8, 4, 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSet(tc.elemSize, tc.elemAlign)
			if err != nil {
				t.Fatalf("NewSet: %v", err)
			}
			if s.Size != tc.size || s.Align != tc.align {
				t.Errorf("slot: got %d/%d, want %d/%d", s.Size, s.Align, tc.size, tc.align)
			}
			if s.HashNextIDOffset != tc.next || s.HashIndexOffset != tc.index {
				t.Errorf("hash fields: got %d/%d, want %d/%d", s.HashNextIDOffset, s.HashIndexOffset, tc.next, tc.index)
			}
			if s.KeyOffset != 0 {
				t.Errorf("plain set key offset = %d", s.KeyOffset)
			}
		})
	}
}

func TestNewMap(t *testing.T) {
	m, err := NewMap(PairLegacy, 8, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if m.Set.KeyOffset != m.Pair.KeyOffset || m.Set.KeyOffset != 4 {
		t.Errorf("set key offset %d, pair key offset %d", m.Set.KeyOffset, m.Pair.KeyOffset)
	}
	if m.Set.ElementSize != m.Pair.SlotSize {
		t.Errorf("element size %d, want pair slot %d", m.Set.ElementSize, m.Pair.SlotSize)
	}
}
