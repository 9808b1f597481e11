package hashed

import (
	"errors"
	"testing"

	"github.com/codewanderer42820/unmanaged/mem"
)

// TestAddGetRemove exercises the basic lifecycle on a dynamic map.
func TestAddGetRemove(t *testing.T) {
	m := NewMap[uint64, uint64](mem.Heap, 16, false)
	defer m.Free()

	if err := m.Add(1, 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if v, err := m.Get(1); err != nil || v != 100 {
		t.Fatalf("get = %d, %v", v, err)
	}
	if !m.Remove(1) {
		t.Fatal("remove should succeed")
	}
	if _, err := m.Get(1); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("get after remove: %v", err)
	}
	if m.Remove(1) {
		t.Fatal("second remove should fail")
	}
}

// TestDuplicateKey checks that Add reports ErrDuplicateKey, TryAdd returns
// false, and Set silently overwrites.
func TestDuplicateKey(t *testing.T) {
	m := NewMap[uint32, uint32](mem.Heap, 8, false)
	defer m.Free()

	if err := m.Add(7, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add(7, 2); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("duplicate add: %v", err)
	}
	if m.TryAdd(7, 3) {
		t.Fatal("TryAdd of duplicate should fail")
	}
	m.Set(7, 9)
	if v, _ := m.TryGet(7); v != 9 {
		t.Fatalf("after Set: got %d, want 9", v)
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
}

// TestCountInvariant interleaves inserts and removes and verifies
// count == used - free at every step by re-deriving it from membership.
func TestCountInvariant(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 8, false)
	defer m.Free()

	live := map[int]bool{}
	for i := 0; i < 200; i++ {
		k := i % 37
		if live[k] {
			if !m.Remove(k) {
				t.Fatalf("step %d: remove %d failed", i, k)
			}
			delete(live, k)
		} else {
			if !m.TryAdd(k, i) {
				t.Fatalf("step %d: add %d failed", i, k)
			}
			live[k] = true
		}
		if m.Count() != len(live) {
			t.Fatalf("step %d: count = %d, want %d", i, m.Count(), len(live))
		}
	}
}

// TestExpandRoundTrip allocates at the smallest prime and inserts enough
// keys to force two expansions (3 → 7 → 17), then verifies every key still
// resolves to its value and the capacity landed on the expected prime.
func TestExpandRoundTrip(t *testing.T) {
	m := NewMap[uint64, uint64](mem.Heap, 1, false)
	defer m.Free()

	if m.Capacity() != 3 {
		t.Fatalf("initial capacity = %d, want 3", m.Capacity())
	}
	for i := uint64(0); i < 9; i++ {
		if err := m.Add(i, i*10); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if m.Count() != 9 {
		t.Fatalf("count = %d, want 9", m.Count())
	}
	if m.Capacity() != 17 {
		t.Fatalf("capacity = %d, want 17", m.Capacity())
	}
	for i := uint64(0); i < 9; i++ {
		if v, err := m.Get(i); err != nil || v != i*10 {
			t.Fatalf("key %d lost across expansion: %d, %v", i, v, err)
		}
	}
}

// TestFixedFull verifies the fixed-size failure contract: TryAdd degrades
// to false, Add panics with ErrFull, and no key is lost on the way there.
func TestFixedFull(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 3, true)
	defer m.Free()

	capacity := m.Capacity()
	for i := 0; i < capacity; i++ {
		if !m.TryAdd(i, i) {
			t.Fatalf("add %d should fit", i)
		}
	}
	if m.TryAdd(capacity, 0) {
		t.Fatal("TryAdd into full fixed map should fail")
	}
	defer func() {
		if r := recover(); r != ErrFull {
			t.Fatalf("Add into full fixed map panicked with %v, want ErrFull", r)
		}
	}()
	_ = m.Add(capacity, 0)
}

// TestClearKeepsCapacity clears a populated map and checks the capacity and
// storage survive while all entries vanish.
func TestClearKeepsCapacity(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 16, false)
	defer m.Free()

	for i := 0; i < 10; i++ {
		m.Set(i, i)
	}
	capacity := m.Capacity()
	m.Clear()
	if m.Count() != 0 {
		t.Fatalf("count after clear = %d", m.Count())
	}
	if m.Capacity() != capacity {
		t.Fatalf("capacity changed across clear: %d != %d", m.Capacity(), capacity)
	}
	// storage must be reusable immediately
	if err := m.Add(1, 2); err != nil {
		t.Fatalf("add after clear: %v", err)
	}
}

// TestFreeListReuse removes a key and verifies the next insert reuses the
// freed slot instead of consuming a virgin one (used stays flat).
func TestFreeListReuse(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 8, false)
	defer m.Free()

	for i := 0; i < 5; i++ {
		m.Set(i, i)
	}
	usedBefore := m.used
	m.Remove(2)
	m.Set(99, 99)
	if m.used != usedBefore {
		t.Fatalf("used grew to %d despite free slot", m.used)
	}
	if v, _ := m.TryGet(99); v != 99 {
		t.Fatal("reused slot lost its value")
	}
}

// TestRange walks all live entries and confirms removed ones are skipped.
func TestRange(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 16, false)
	defer m.Free()

	for i := 0; i < 10; i++ {
		m.Set(i, i*2)
	}
	m.Remove(4)

	seen := map[int]int{}
	m.Range(func(k, v int) bool {
		seen[k] = v
		return true
	})
	if len(seen) != 9 {
		t.Fatalf("ranged over %d entries, want 9", len(seen))
	}
	if _, ok := seen[4]; ok {
		t.Fatal("removed key visited")
	}
}

// TestFreeInvalidates verifies IsValid flips after Free and a second Free
// panics.
func TestFreeInvalidates(t *testing.T) {
	m := NewMap[int, int](mem.Heap, 8, false)
	if !m.IsValid() {
		t.Fatal("fresh map should be valid")
	}
	m.Free()
	if m.IsValid() {
		t.Fatal("freed map should be invalid")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("double free should panic")
		}
	}()
	m.Free()
}
