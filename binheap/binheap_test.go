package binheap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/codewanderer42820/unmanaged/mem"
)

// TestMinHeapDrainsSorted pushes random keys and expects the pops in fully
// ascending order.
func TestMinHeapDrainsSorted(t *testing.T) {
	h := NewMin[int](mem.Heap, 8, false)
	defer h.Free()

	rng := rand.New(rand.NewSource(7))
	keys := make([]int, 500)
	for i := range keys {
		keys[i] = rng.Intn(10_000)
		h.Push(keys[i])
	}
	sort.Ints(keys)
	for i, want := range keys {
		if got := h.Pop(); got != want {
			t.Fatalf("pop %d = %d, want %d", i, got, want)
		}
	}
}

// TestMaxHeapDrainsSorted mirrors the min case in descending order.
func TestMaxHeapDrainsSorted(t *testing.T) {
	h := NewMax[int](mem.Heap, 8, false)
	defer h.Free()

	rng := rand.New(rand.NewSource(8))
	keys := make([]int, 500)
	for i := range keys {
		keys[i] = rng.Intn(10_000)
		h.Push(keys[i])
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	for i, want := range keys {
		if got := h.Pop(); got != want {
			t.Fatalf("pop %d = %d, want %d", i, got, want)
		}
	}
}

// TestPeekLeavesRoot peeks the extremum without consuming it.
func TestPeekLeavesRoot(t *testing.T) {
	h := NewMin[int](mem.Heap, 4, false)
	defer h.Free()

	h.Push(3)
	h.Push(1)
	if v, ok := h.Peek(); !ok || v != 1 || h.Count() != 2 {
		t.Fatalf("peek = %d, %v, count %d", v, ok, h.Count())
	}
}

// TestEmptyPopPanics enforces fail-fast on empty removal.
func TestEmptyPopPanics(t *testing.T) {
	h := NewMin[int](mem.Heap, 4, false)
	defer h.Free()
	defer func() {
		if recover() == nil {
			t.Fatal("pop of empty heap should panic")
		}
	}()
	h.Pop()
}

// TestFixedFull verifies TryPush fails and Push panics at capacity.
func TestFixedFull(t *testing.T) {
	h := NewMin[int](mem.Heap, 2, true)
	defer h.Free()

	h.Push(1)
	h.Push(2)
	if h.TryPush(3) {
		t.Fatal("TryPush into full fixed heap should fail")
	}
	defer func() {
		if r := recover(); r != ErrFull {
			t.Fatalf("panicked with %v, want ErrFull", r)
		}
	}()
	h.Push(3)
}

// TestDuplicateKeys drains duplicates without loss.
func TestDuplicateKeys(t *testing.T) {
	h := NewMin[int](mem.Heap, 4, false)
	defer h.Free()

	for _, k := range []int{5, 5, 1, 5} {
		h.Push(k)
	}
	want := []int{1, 5, 5, 5}
	for _, w := range want {
		if got := h.Pop(); got != w {
			t.Fatalf("pop = %d, want %d", got, w)
		}
	}
}
