package bitset

import (
	"math/rand"
	"testing"

	"github.com/codewanderer42820/unmanaged/mem"
)

// TestSetClearTest exercises single-bit mutation across word boundaries.
func TestSetClearTest(t *testing.T) {
	s := New(mem.Heap, 130)
	defer s.Free()

	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 129} {
		if s.Test(i) {
			t.Fatalf("bit %d set in fresh set", i)
		}
		s.Set(i)
		if !s.Test(i) {
			t.Fatalf("bit %d did not stick", i)
		}
		s.Clear(i)
		if s.Test(i) {
			t.Fatalf("bit %d survived clear", i)
		}
	}
}

// TestBoundsPanic enforces fail-fast on out-of-range indices.
func TestBoundsPanic(t *testing.T) {
	s := New(mem.Heap, 64)
	defer s.Free()
	defer func() {
		if recover() == nil {
			t.Fatal("out-of-range Set should panic")
		}
	}()
	s.Set(64)
}

// TestBooleanOps checks And/Or/Xor against a shadow computation.
func TestBooleanOps(t *testing.T) {
	const n = 200
	rng := rand.New(rand.NewSource(3))

	mk := func() (*Set, []bool) {
		s := New(mem.Heap, n)
		shadow := make([]bool, n)
		for i := 0; i < n; i++ {
			if rng.Intn(2) == 1 {
				s.Set(i)
				shadow[i] = true
			}
		}
		return s, shadow
	}

	check := func(name string, s *Set, shadow []bool) {
		t.Helper()
		for i := 0; i < n; i++ {
			if s.Test(i) != shadow[i] {
				t.Fatalf("%s: bit %d = %v, want %v", name, i, s.Test(i), shadow[i])
			}
		}
	}

	a, sa := mk()
	b, sb := mk()
	defer a.Free()
	defer b.Free()

	and := New(mem.Heap, n)
	defer and.Free()
	if err := and.Or(a); err != nil {
		t.Fatal(err)
	}
	if err := and.And(b); err != nil {
		t.Fatal(err)
	}
	want := make([]bool, n)
	for i := range want {
		want[i] = sa[i] && sb[i]
	}
	check("and", and, want)

	xor := New(mem.Heap, n)
	defer xor.Free()
	if err := xor.Or(a); err != nil {
		t.Fatal(err)
	}
	if err := xor.Xor(b); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		want[i] = sa[i] != sb[i]
	}
	check("xor", xor, want)
}

// TestSizeMismatch rejects word-wise ops on differently-sized sets.
func TestSizeMismatch(t *testing.T) {
	a := New(mem.Heap, 64)
	b := New(mem.Heap, 128)
	defer a.Free()
	defer b.Free()

	if err := a.And(b); err != ErrSizeMismatch {
		t.Fatalf("And = %v, want ErrSizeMismatch", err)
	}
	if err := a.Or(b); err != ErrSizeMismatch {
		t.Fatalf("Or = %v, want ErrSizeMismatch", err)
	}
	if err := a.Xor(b); err != ErrSizeMismatch {
		t.Fatalf("Xor = %v, want ErrSizeMismatch", err)
	}
}

// TestIndices extracts set bits in ascending order, including sparse layouts
// with long zero runs.
func TestIndices(t *testing.T) {
	s := New(mem.Heap, 512)
	defer s.Free()

	want := []int{0, 7, 8, 63, 64, 200, 511}
	for _, i := range want {
		s.Set(i)
	}
	got := s.Indices(nil)
	if len(got) != len(want) {
		t.Fatalf("Indices returned %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Indices[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if s.Count() != len(want) {
		t.Fatalf("Count = %d, want %d", s.Count(), len(want))
	}
}

// TestClearAll wipes every bit in one call.
func TestClearAll(t *testing.T) {
	s := New(mem.Heap, 256)
	defer s.Free()

	for i := 0; i < 256; i += 3 {
		s.Set(i)
	}
	s.ClearAll()
	if s.Count() != 0 {
		t.Fatalf("Count after ClearAll = %d", s.Count())
	}
	if got := s.Indices(nil); len(got) != 0 {
		t.Fatalf("Indices after ClearAll = %v", got)
	}
}

// TestFreeInvalidates releases storage and flips IsValid.
func TestFreeInvalidates(t *testing.T) {
	s := New(mem.Heap, 64)
	if !s.IsValid() {
		t.Fatal("fresh set invalid")
	}
	s.Free()
	if s.IsValid() {
		t.Fatal("freed set still valid")
	}
}
