package bridge

import (
	"testing"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
	"github.com/wippyai/script-containers/layout"
	"github.com/wippyai/script-containers/memory"
	"github.com/wippyai/script-containers/native"
)

func newHeap(t *testing.T) *memory.Heap {
	t.Helper()
	h, err := memory.NewHeap(memory.NewLinear(1, 0), memory.DefaultHeapOptions())
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	return h
}

func lookup(t *testing.T, r *descriptor.Registry, name string) *descriptor.Type {
	t.Helper()
	d, err := r.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return d
}

// counting records element lifetime calls made through it.
type counting struct {
	descriptor.Descriptor
	inits, destroys, copies int
}

func (c *counting) Initialize(mem containers.Arena, addr uint32) error {
	c.inits++
	return c.Descriptor.Initialize(mem, addr)
}

func (c *counting) Destroy(mem containers.Arena, addr uint32) error {
	c.destroys++
	return c.Descriptor.Destroy(mem, addr)
}

func (c *counting) Copy(mem containers.Arena, dst, src uint32) error {
	c.copies++
	return c.Descriptor.Copy(mem, dst, src)
}

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !errors.HasKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func mustGet(t *testing.T, get func(int32) (any, error), index int32) any {
	t.Helper()
	v, err := get(index)
	if err != nil {
		t.Fatalf("Get(%d): %v", index, err)
	}
	return v
}

func TestArray_Operations(t *testing.T) {
	h := newHeap(t)
	arr := NewArrayWithDefaults(h, lookup(t, descriptor.NewRegistry(), "s32"))

	first, err := arr.Add(3, 7)
	if err != nil || first != 0 {
		t.Fatalf("Add(3, 7) = %d, %v", first, err)
	}
	if arr.Num() != 2 {
		t.Fatalf("Num = %d, want 2", arr.Num())
	}
	if got := mustGet(t, arr.Get, 1); got != int32(7) {
		t.Errorf("Get(1) = %v (%T), want int32 7", got, got)
	}
	if first, err = arr.Add(5); err != nil || first != 2 {
		t.Fatalf("Add(5) = %d, %v", first, err)
	}

	if idx, _ := arr.FindIndex(7); idx != 1 {
		t.Errorf("FindIndex(7) = %d, want 1", idx)
	}
	if idx, _ := arr.FindIndex(9); idx != containers.IndexNone {
		t.Errorf("FindIndex(9) = %d, want -1", idx)
	}
	if ok, _ := arr.Contains("5"); !ok {
		t.Error(`Contains("5") = false, want lenient match`)
	}

	if err := arr.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt(0): %v", err)
	}
	if got := mustGet(t, arr.Get, 0); got != int32(7) {
		t.Errorf("Get(0) after remove = %v, want 7", got)
	}
	if err := arr.Set(1, 2.9); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := mustGet(t, arr.Get, 1); got != int32(2) {
		t.Errorf("Get(1) after lenient Set = %v, want 2", got)
	}

	_, err = arr.Get(2)
	wantKind(t, err, errors.KindIndexOutOfRange)
	_, err = arr.Get(-1)
	wantKind(t, err, errors.KindIndexOutOfRange)
	wantKind(t, arr.Set(5, 1), errors.KindIndexOutOfRange)
	wantKind(t, arr.RemoveAt(2), errors.KindIndexOutOfRange)

	if err := arr.Empty(); err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if arr.Num() != 0 || arr.IsValidIndex(0) {
		t.Errorf("after Empty: Num = %d", arr.Num())
	}
	if h.Live() != 0 {
		t.Errorf("Live = %d after Empty, want 0", h.Live())
	}
}

func TestArray_AddArgumentCount(t *testing.T) {
	arr := NewArrayWithDefaults(newHeap(t), lookup(t, descriptor.NewRegistry(), "u8"))
	_, err := arr.Add()
	wantKind(t, err, errors.KindArgumentCount)
}

func TestArray_AddRollback(t *testing.T) {
	h := newHeap(t)
	elem := &counting{Descriptor: lookup(t, descriptor.NewRegistry(), "enum<red, green>")}
	arr := NewArrayWithDefaults(h, elem)

	if _, err := arr.Add("green"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := arr.Add("red", "blue")
	wantKind(t, err, errors.KindInvalidEnum)

	if arr.Num() != 1 {
		t.Fatalf("Num = %d after failed Add, want 1", arr.Num())
	}
	if got := mustGet(t, arr.Get, 0); got != "green" {
		t.Errorf("Get(0) = %v, want green", got)
	}
	if elem.inits != 3 || elem.destroys != 2 {
		t.Errorf("inits = %d, destroys = %d, want 3 and 2", elem.inits, elem.destroys)
	}
}

func TestArray_SetReinitialize(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantLeak int
	}{
		{"default leaks", DefaultOptions(), 1},
		{"destroy before set", Options{DestroyBeforeSet: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHeap(t)
			arr := NewArray(h, lookup(t, descriptor.NewRegistry(), "string"), tt.opts)
			if _, err := arr.Add("abc"); err != nil {
				t.Fatalf("Add: %v", err)
			}
			before := h.Live()
			if err := arr.Set(0, "xyz"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got := mustGet(t, arr.Get, 0); got != "xyz" {
				t.Errorf("Get(0) = %v, want xyz", got)
			}
			if leak := h.Live() - before; leak != tt.wantLeak {
				t.Errorf("leaked %d blocks, want %d", leak, tt.wantLeak)
			}
			if h.InvalidFrees() != 0 {
				t.Errorf("InvalidFrees = %d", h.InvalidFrees())
			}
		})
	}
}

func TestSet_Operations(t *testing.T) {
	h := newHeap(t)
	set, err := NewSet(h, lookup(t, descriptor.NewRegistry(), "u32"))
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	for _, v := range []any{5, 5, 6, "7"} {
		if err := set.Add(v); err != nil {
			t.Fatalf("Add(%v): %v", v, err)
		}
	}
	if set.Num() != 3 || set.GetMaxIndex() != 3 {
		t.Fatalf("Num = %d, GetMaxIndex = %d, want 3 and 3", set.Num(), set.GetMaxIndex())
	}

	idx, err := set.FindIndex(6)
	if err != nil || idx == containers.IndexNone {
		t.Fatalf("FindIndex(6) = %d, %v", idx, err)
	}
	if got := mustGet(t, set.Get, idx); got != uint32(6) {
		t.Errorf("Get(%d) = %v (%T), want uint32 6", idx, got, got)
	}
	if err := set.RemoveAt(idx); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if set.Num() != 2 || set.GetMaxIndex() != 3 {
		t.Errorf("after remove: Num = %d, GetMaxIndex = %d, want 2 and 3", set.Num(), set.GetMaxIndex())
	}
	if set.IsValidIndex(idx) {
		t.Errorf("IsValidIndex(%d) = true after remove", idx)
	}
	_, err = set.Get(idx)
	wantKind(t, err, errors.KindIndexOutOfRange)
	wantKind(t, set.RemoveAt(idx), errors.KindIndexOutOfRange)
	_, err = set.Get(99)
	wantKind(t, err, errors.KindIndexOutOfRange)

	if ok, _ := set.Contains(6); ok {
		t.Error("Contains(6) after remove")
	}
	if err := set.Add(8); err != nil {
		t.Fatalf("Add(8): %v", err)
	}
	if reused, _ := set.FindIndex(8); reused != idx {
		t.Errorf("Add(8) landed in slot %d, want reused slot %d", reused, idx)
	}

	if err := set.Empty(); err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if set.Num() != 0 || set.GetMaxIndex() != 0 {
		t.Errorf("after Empty: Num = %d, GetMaxIndex = %d", set.Num(), set.GetMaxIndex())
	}
	if err := set.Add(1); err != nil {
		t.Fatalf("Add after Empty: %v", err)
	}
	if idx, _ := set.FindIndex(1); idx != 0 {
		t.Errorf("FindIndex(1) after Empty = %d, want 0", idx)
	}
}

func TestSet_LifetimeBalanced(t *testing.T) {
	h := newHeap(t)
	elem := &counting{Descriptor: lookup(t, descriptor.NewRegistry(), "string")}
	set, err := NewSet(h, elem)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	for _, v := range []string{"a", "b", "a", "c"} {
		if err := set.Add(v); err != nil {
			t.Fatalf("Add(%q): %v", v, err)
		}
	}
	idx, _ := set.FindIndex("b")
	if err := set.RemoveAt(idx); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if err := set.Empty(); err != nil {
		t.Fatalf("Empty: %v", err)
	}

	if elem.inits != elem.destroys {
		t.Errorf("inits = %d, destroys = %d", elem.inits, elem.destroys)
	}
	if elem.copies != 3 {
		t.Errorf("copies = %d, want 3 (duplicates are not reconstructed)", elem.copies)
	}
	if h.Live() != 0 || h.InvalidFrees() != 0 {
		t.Errorf("Live = %d, InvalidFrees = %d", h.Live(), h.InvalidFrees())
	}
}

func TestMap_Operations(t *testing.T) {
	for _, policy := range []native.Options{{PairPolicy: layout.PairCompact}, {PairPolicy: layout.PairLegacy}} {
		t.Run(policy.PairPolicy.String(), func(t *testing.T) {
			h := newHeap(t)
			r := descriptor.NewRegistry()
			m, err := NewMap(h, lookup(t, r, "string"), lookup(t, r, "s32"), policy)
			if err != nil {
				t.Fatalf("NewMap: %v", err)
			}

			if err := m.Add("a", 1); err != nil {
				t.Fatalf("Add: %v", err)
			}
			if err := m.Set("b", 2); err != nil {
				t.Fatalf("Set: %v", err)
			}
			before := h.Live()
			if err := m.Add("a", 3); err != nil {
				t.Fatalf("Add upsert: %v", err)
			}
			if h.Live() != before {
				t.Errorf("upsert changed live blocks %d -> %d", before, h.Live())
			}
			if m.Num() != 2 {
				t.Fatalf("Num = %d, want 2", m.Num())
			}

			v, ok, err := m.Get("a")
			if err != nil || !ok || v != int32(3) {
				t.Errorf("Get(a) = %v, %v, %v; want 3, true, nil", v, ok, err)
			}
			v, ok, err = m.Get("z")
			if err != nil || ok || v != nil {
				t.Errorf("Get(z) = %v, %v, %v; want nil, false, nil", v, ok, err)
			}
			wantKind(t, m.Remove("z"), errors.KindKeyNotFound)

			if err := m.Remove("a"); err != nil {
				t.Fatalf("Remove(a): %v", err)
			}
			if m.Num() != 1 || m.GetMaxIndex() != 2 {
				t.Errorf("after remove: Num = %d, GetMaxIndex = %d", m.Num(), m.GetMaxIndex())
			}

			var bIndex int32 = containers.IndexNone
			for i := int32(0); i < m.GetMaxIndex(); i++ {
				if m.IsValidIndex(i) {
					bIndex = i
				}
			}
			key, err := m.GetKey(bIndex)
			if err != nil || key != "b" {
				t.Errorf("GetKey(%d) = %v, %v; want b", bIndex, key, err)
			}
			_, err = m.GetKey(bIndex + 5)
			wantKind(t, err, errors.KindIndexOutOfRange)

			if err := m.Empty(); err != nil {
				t.Fatalf("Empty: %v", err)
			}
			if m.Num() != 0 || m.GetMaxIndex() != 0 {
				t.Errorf("after Empty: Num = %d, GetMaxIndex = %d", m.Num(), m.GetMaxIndex())
			}
			if h.Live() != 0 || h.InvalidFrees() != 0 {
				t.Errorf("Live = %d, InvalidFrees = %d", h.Live(), h.InvalidFrees())
			}
		})
	}
}

func TestMap_ValueConversionFailure(t *testing.T) {
	h := newHeap(t)
	r := descriptor.NewRegistry()
	key := &counting{Descriptor: lookup(t, r, "string")}
	m, err := NewMap(h, key, lookup(t, r, "enum<on, off>"), native.DefaultOptions())
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	wantKind(t, m.Add("k", "dim"), errors.KindInvalidEnum)
	if m.Num() != 0 {
		t.Errorf("Num = %d after failed Add", m.Num())
	}
	if key.inits != key.destroys || h.Live() != 0 {
		t.Errorf("key inits = %d, destroys = %d, Live = %d", key.inits, key.destroys, h.Live())
	}
}

func TestDescriptorReleased(t *testing.T) {
	h := newHeap(t)
	r := descriptor.NewRegistry()
	elem := lookup(t, r, "u16")
	value := lookup(t, r, "bool")

	arr := NewArrayWithDefaults(h, elem)
	set, err := NewSet(h, elem)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	m, err := NewMap(h, elem, value, native.DefaultOptions())
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if _, err := arr.Add(1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := set.Add(1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add(1, true); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Release("u16"); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if arr.Num() != 1 || set.Num() != 1 || m.Num() != 1 {
		t.Error("Num must not check the descriptor")
	}
	_, err = arr.Get(0)
	wantKind(t, err, errors.KindDescriptorInvalid)
	_, err = arr.Add(2)
	wantKind(t, err, errors.KindDescriptorInvalid)
	_, err = set.Get(0)
	wantKind(t, err, errors.KindDescriptorInvalid)
	wantKind(t, set.Empty(), errors.KindDescriptorInvalid)
	_, _, err = m.Get(1)
	wantKind(t, err, errors.KindDescriptorInvalid)
	wantKind(t, m.Remove(1), errors.KindDescriptorInvalid)

	_, err = NewSet(h, elem)
	wantKind(t, err, errors.KindDescriptorInvalid)
}

func TestFixedArray(t *testing.T) {
	h := newHeap(t)
	r := descriptor.NewRegistry()
	elem := lookup(t, r, "s32").WithArrayDim(4)

	base, err := h.Alloc(4*elem.Size(), elem.Align())
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	fixed := NewFixedArray(h, base, elem)

	if n, err := fixed.Num(); err != nil || n != 4 {
		t.Fatalf("Num = %d, %v", n, err)
	}
	for i := int32(0); i < 4; i++ {
		if err := fixed.Set(i, int(i)*10); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	if got := mustGet(t, fixed.Get, 3); got != int32(30) {
		t.Errorf("Get(3) = %v, want 30", got)
	}
	if v, _ := h.ReadU32(base + 8); v != 20 {
		t.Errorf("element 2 in memory = %d, want 20", v)
	}

	_, err = fixed.Get(4)
	wantKind(t, err, errors.KindIndexOutOfRange)
	wantKind(t, fixed.Set(-1, 0), errors.KindIndexOutOfRange)
	wantKind(t, fixed.Set(0, "x"), errors.KindTypeMismatch)
	wantKind(t, fixed.Set(0, int64(1)<<40), errors.KindOverflow)

	if err := r.Release("s32"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	_, err = fixed.Num()
	wantKind(t, err, errors.KindDescriptorInvalid)
}
