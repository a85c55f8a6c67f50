package native

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
	"github.com/wippyai/script-containers/memory"
)

func newHeap(t *testing.T) *memory.Heap {
	t.Helper()
	h, err := memory.NewHeap(memory.NewLinear(1, 0), memory.DefaultHeapOptions())
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	return h
}

// u32Keys hashes and compares u32 elements; collide forces one bucket chain.
func u32Keys(h *memory.Heap, collide bool) KeyFuncs {
	return KeyFuncs{
		Hash: func(addr uint32) (uint64, error) {
			v, err := h.ReadU32(addr)
			if collide {
				return 7, err
			}
			return uint64(v) * 0x9E3779B97F4A7C15, err
		},
		Equal: func(a, b uint32) (bool, error) {
			va, err := h.ReadU32(a)
			if err != nil {
				return false, err
			}
			vb, err := h.ReadU32(b)
			return va == vb, err
		},
	}
}

func scratchU32(t *testing.T, h *memory.Heap, v uint32) uint32 {
	t.Helper()
	addr, err := h.Alloc(4, 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := h.WriteU32(addr, v); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	return addr
}

func writeFrom(h *memory.Heap, src uint32) func(uint32) error {
	return func(slot uint32) error {
		v, err := h.ReadU32(src)
		if err != nil {
			return err
		}
		return h.WriteU32(slot, v)
	}
}

func TestSlackGrow(t *testing.T) {
	tests := []struct{ num, max, want int32 }{
		{1, 0, 4},
		{4, 0, 4},
		{5, 0, 5 + 1 + 16},
		{5, 4, 5 + 1 + 16},
		{100, 80, 100 + 37 + 16},
	}
	for _, tc := range tests {
		if got := slackGrow(tc.num, tc.max); got != tc.want {
			t.Errorf("slackGrow(%d, %d) = %d, want %d", tc.num, tc.max, got, tc.want)
		}
	}
}

func TestBucketCount(t *testing.T) {
	tests := []struct {
		n    int32
		want int
	}{
		{0, 1}, {3, 1}, {4, 16}, {16, 16}, {17, 16}, {18, 32}, {100, 64},
	}
	for _, tc := range tests {
		if got := bucketCount(tc.n); got != tc.want {
			t.Errorf("bucketCount(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestArray_AddRemove(t *testing.T) {
	h := newHeap(t)
	a := NewArray(h)

	first, err := a.Add(3, 4, 4)
	if err != nil || first != 0 {
		t.Fatalf("Add = %d, %v", first, err)
	}
	if a.Num() != 3 || a.Max() != 4 {
		t.Errorf("num %d max %d, want 3/4", a.Num(), a.Max())
	}
	for i := int32(0); i < 3; i++ {
		addr, _ := a.SlotAddr(i, 4)
		_ = h.WriteU32(addr, uint32(10+i))
	}

	first, err = a.Add(2, 4, 4)
	if err != nil || first != 3 {
		t.Fatalf("second Add = %d, %v", first, err)
	}
	if a.Max() != 5+1+16 {
		t.Errorf("max after growth = %d", a.Max())
	}
	addr, _ := a.SlotAddr(2, 4)
	if v, _ := h.ReadU32(addr); v != 12 {
		t.Errorf("growth lost data: slot 2 = %d", v)
	}

	if err := a.Remove(0, 1, 4, 4); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if a.Num() != 4 {
		t.Errorf("num after remove = %d", a.Num())
	}
	for i, want := range []uint32{11, 12} {
		addr, _ := a.SlotAddr(int32(i), 4)
		if v, _ := h.ReadU32(addr); v != want {
			t.Errorf("slot %d = %d, want %d", i, v, want)
		}
	}

	if _, err := a.SlotAddr(4, 4); !errors.HasKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("SlotAddr past end: got %v", err)
	}
	if err := a.Remove(3, 2, 4, 4); !errors.HasKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("Remove past end: got %v", err)
	}
	if a.IsValidIndex(-1) || a.IsValidIndex(4) || !a.IsValidIndex(3) {
		t.Error("IsValidIndex range check is wrong")
	}
}

func TestArray_Empty(t *testing.T) {
	h := newHeap(t)
	a := NewArray(h)
	_, _ = a.Add(10, 8, 8)

	if err := a.Empty(0, 8, 8); err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if a.Num() != 0 || a.Max() != 0 || a.Data() != 0 {
		t.Errorf("after Empty(0): num %d max %d data %d", a.Num(), a.Max(), a.Data())
	}
	if h.Live() != 0 {
		t.Errorf("storage leaked: %d live blocks", h.Live())
	}

	_, _ = a.Add(2, 8, 8)
	if err := a.Empty(8, 8, 8); err != nil {
		t.Fatalf("Empty(8): %v", err)
	}
	if a.Num() != 0 || a.Max() != 8 {
		t.Errorf("after Empty(8): num %d max %d", a.Num(), a.Max())
	}
	a.Release(8, 8)
	if h.Live() != 0 || h.InvalidFrees() != 0 {
		t.Errorf("release: live %d invalid %d", h.Live(), h.InvalidFrees())
	}
}

func TestSet_AddFindRemove(t *testing.T) {
	for _, collide := range []bool{false, true} {
		name := "spread"
		if collide {
			name = "colliding"
		}
		t.Run(name, func(t *testing.T) {
			h := newHeap(t)
			s, err := NewSet(h, 4, 4, u32Keys(h, collide))
			if err != nil {
				t.Fatalf("NewSet: %v", err)
			}

			const n = 100
			for i := uint32(0); i < n; i++ {
				probe := scratchU32(t, h, i)
				index, added, err := s.Add(probe, writeFrom(h, probe))
				if err != nil || !added || index != int32(i) {
					t.Fatalf("Add(%d) = %d, %v, %v", i, index, added, err)
				}
			}
			if s.Num() != n || s.MaxIndex() != n {
				t.Fatalf("num %d max %d", s.Num(), s.MaxIndex())
			}

			constructed := false
			index, added, err := s.Add(scratchU32(t, h, 42), func(uint32) error {
				constructed = true
				return nil
			})
			if err != nil || added || index != 42 || constructed {
				t.Errorf("duplicate Add = %d, %v, %v (constructed %v)", index, added, err, constructed)
			}

			for i := uint32(0); i < n; i++ {
				got, err := s.FindIndex(scratchU32(t, h, i))
				if err != nil || got != int32(i) {
					t.Fatalf("FindIndex(%d) = %d, %v", i, got, err)
				}
			}

			for _, i := range []int32{10, 50, 99, 0} {
				if err := s.RemoveAt(i); err != nil {
					t.Fatalf("RemoveAt(%d): %v", i, err)
				}
				if s.IsValidIndex(i) {
					t.Errorf("slot %d still valid", i)
				}
				if got, _ := s.FindIndex(scratchU32(t, h, uint32(i))); got != -1 {
					t.Errorf("removed %d still found at %d", i, got)
				}
			}
			if s.Num() != n-4 || s.MaxIndex() != n {
				t.Errorf("after removes: num %d max %d", s.Num(), s.MaxIndex())
			}
			if got, _ := s.FindIndex(scratchU32(t, h, 51)); got != 51 {
				t.Errorf("neighbour lost after removes: %d", got)
			}

			// holes are refilled most recently freed first
			index, _, _ = s.Add(scratchU32(t, h, 1000), func(slot uint32) error { return h.WriteU32(slot, 1000) })
			if index != 0 {
				t.Errorf("reused slot %d, want 0", index)
			}
			index, _, _ = s.Add(scratchU32(t, h, 1001), func(slot uint32) error { return h.WriteU32(slot, 1001) })
			if index != 99 {
				t.Errorf("reused slot %d, want 99", index)
			}
			if got, _ := s.FindIndex(scratchU32(t, h, 1001)); got != 99 {
				t.Errorf("FindIndex(1001) = %d", got)
			}
		})
	}
}

func TestSet_ConstructFailure(t *testing.T) {
	h := newHeap(t)
	s, _ := NewSet(h, 4, 4, u32Keys(h, false))
	_, _, _ = s.Add(scratchU32(t, h, 1), func(slot uint32) error { return h.WriteU32(slot, 1) })

	boom := stderrors.New("boom")
	_, _, err := s.Add(scratchU32(t, h, 2), func(uint32) error { return boom })
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected construct error, got %v", err)
	}
	if s.Num() != 1 || s.IsValidIndex(1) {
		t.Errorf("failed add left num %d, slot 1 valid %v", s.Num(), s.IsValidIndex(1))
	}
	if got, _ := s.FindIndex(scratchU32(t, h, 2)); got != -1 {
		t.Errorf("failed element is findable at %d", got)
	}
}

func TestSet_SlotAddrAndEmpty(t *testing.T) {
	h := newHeap(t)
	s, _ := NewSet(h, 4, 4, u32Keys(h, false))
	base := h.Live()

	for i := uint32(0); i < 3; i++ {
		v := i
		_, _, _ = s.Add(scratchU32(t, h, v), func(slot uint32) error { return h.WriteU32(slot, v) })
	}
	_ = s.RemoveAt(1)
	if _, err := s.SlotAddr(1); !errors.HasKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("SlotAddr on hole: got %v", err)
	}
	addr, err := s.SlotAddr(2)
	if err != nil {
		t.Fatalf("SlotAddr: %v", err)
	}
	if v, _ := h.ReadU32(addr); v != 2 {
		t.Errorf("slot 2 holds %d", v)
	}

	var seen []int32
	_ = s.Each(func(i int32) error { seen = append(seen, i); return nil })
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 2 {
		t.Errorf("Each visited %v", seen)
	}

	s.Empty()
	if s.Num() != 0 || s.MaxIndex() != 0 {
		t.Errorf("after Empty: num %d max %d", s.Num(), s.MaxIndex())
	}
	// only the scratch probes remain
	if h.Live() != base+3 {
		t.Errorf("storage not released: live %d, want %d", h.Live(), base+3)
	}
	index, added, _ := s.Add(scratchU32(t, h, 9), func(slot uint32) error { return h.WriteU32(slot, 9) })
	if index != 0 || !added {
		t.Errorf("Add after Empty = %d, %v", index, added)
	}
}

func TestMap_Policies(t *testing.T) {
	for _, policy := range []layout.PairPolicy{layout.PairCompact, layout.PairLegacy} {
		t.Run(policy.String(), func(t *testing.T) {
			h := newHeap(t)
			m, err := NewMap(h, 4, 4, 8, 8, u32Keys(h, false), Options{PairPolicy: policy})
			if err != nil {
				t.Fatalf("NewMap: %v", err)
			}
			if m.Policy() != policy {
				t.Errorf("Policy() = %v", m.Policy())
			}

			put := func(k uint32, v uint64) (int32, bool) {
				probe := scratchU32(t, h, k)
				index, added, err := m.Add(probe, PairFuncs{
					ConstructKey:   writeFrom(h, probe),
					ConstructValue: func(addr uint32) error { return h.WriteU64(addr, v) },
					AssignValue:    func(addr uint32) error { return h.WriteU64(addr, v) },
				})
				if err != nil {
					t.Fatalf("Add(%d): %v", k, err)
				}
				return index, added
			}

			if _, added := put(1, 100); !added {
				t.Error("first put should add")
			}
			put(2, 200)
			if index, added := put(1, 111); added || index != 0 {
				t.Errorf("upsert = %d, %v", index, added)
			}
			if m.Num() != 2 {
				t.Errorf("num = %d", m.Num())
			}

			valueAddr, ok, err := m.FindValue(scratchU32(t, h, 1))
			if err != nil || !ok {
				t.Fatalf("FindValue = %v, %v", ok, err)
			}
			if v, _ := h.ReadU64(valueAddr); v != 111 {
				t.Errorf("value = %d, want 111", v)
			}
			if _, ok, _ := m.FindValue(scratchU32(t, h, 3)); ok {
				t.Error("FindValue for absent key reported a hit")
			}

			keyAddr, _ := m.KeyAddr(1)
			if k, _ := h.ReadU32(keyAddr); k != 2 {
				t.Errorf("key at slot 1 = %d", k)
			}
			valueAddr, _ = m.ValueAddr(1)
			slot := keyAddr - m.Layout().Pair.KeyOffset
			if valueAddr-slot != m.Layout().Pair.ValueOffset {
				t.Errorf("value offset %d, want %d", valueAddr-slot, m.Layout().Pair.ValueOffset)
			}

			_ = m.RemoveAt(0)
			if m.IsValidIndex(0) || m.MaxIndex() != 2 {
				t.Errorf("after RemoveAt: valid %v max %d", m.IsValidIndex(0), m.MaxIndex())
			}
			if got, _ := m.FindPairIndex(scratchU32(t, h, 1)); got != -1 {
				t.Errorf("removed key found at %d", got)
			}
		})
	}
}

func TestMap_ConstructValueFailure(t *testing.T) {
	h := newHeap(t)
	m, _ := NewMap(h, 4, 4, 4, 4, u32Keys(h, false), DefaultOptions())

	boom := stderrors.New("boom")
	keyDestroyed := false
	probe := scratchU32(t, h, 5)
	_, _, err := m.Add(probe, PairFuncs{
		ConstructKey:   writeFrom(h, probe),
		ConstructValue: func(uint32) error { return boom },
		AssignValue:    func(uint32) error { return nil },
		DestroyKey:     func(uint32) error { keyDestroyed = true; return nil },
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !keyDestroyed {
		t.Error("key was not destroyed after value construction failed")
	}
	if m.Num() != 0 {
		t.Errorf("num = %d after failed add", m.Num())
	}
}
