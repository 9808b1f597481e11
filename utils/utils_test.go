package utils

import (
	"testing"
	"unsafe"
)

// ============================================================================
// ZERO-ALLOCATION TYPE CONVERSION TESTS
// ============================================================================

func TestB2s(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "Empty slice", input: []byte{}, expected: ""},
		{name: "Nil slice", input: nil, expected: ""},
		{name: "Single character", input: []byte{'a'}, expected: "a"},
		{name: "ASCII string", input: []byte("hello world"), expected: "hello world"},
		{name: "UTF-8 string", input: []byte("héllo wørld"), expected: "héllo wørld"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := B2s(tt.input); got != tt.expected {
				t.Errorf("B2s(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestB2sZeroCopy(t *testing.T) {
	b := []byte("shared")
	s := B2s(b)
	if unsafe.Pointer(unsafe.StringData(s)) != unsafe.Pointer(&b[0]) {
		t.Error("B2s copied the backing array")
	}
}

func TestS2b(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{name: "Empty string", input: "", expected: nil},
		{name: "Single character", input: "x", expected: []byte{'x'}},
		{name: "ASCII string", input: "hello world", expected: []byte("hello world")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := S2b(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("S2b(%q) length %d, want %d", tt.input, len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("S2b(%q)[%d] = %c, want %c", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := "round trip payload"
	if got := B2s(S2b(original)); got != original {
		t.Errorf("round trip = %q, want %q", got, original)
	}
}

// ============================================================================
// MIXER TESTS
// ============================================================================

func TestMix64Deterministic(t *testing.T) {
	if Mix64(42) != Mix64(42) {
		t.Error("Mix64 is not deterministic")
	}
}

func TestMix64Decorrelates(t *testing.T) {
	// sequential inputs must not produce sequential outputs
	seen := make(map[uint64]uint64, 1000)
	for i := uint64(0); i < 1000; i++ {
		h := Mix64(i)
		if prev, dup := seen[h]; dup {
			t.Fatalf("Mix64 collision: %d and %d both hash to %#x", prev, i, h)
		}
		seen[h] = i
	}
}

func TestMix64Zero(t *testing.T) {
	// the murmur3 finalizer maps 0 to 0
	if Mix64(0) != 0 {
		t.Errorf("Mix64(0) = %#x, want 0", Mix64(0))
	}
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkB2s(b *testing.B) {
	data := []byte("benchmark payload of moderate length")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = B2s(data)
	}
}

func BenchmarkMix64(b *testing.B) {
	var acc uint64
	for i := 0; i < b.N; i++ {
		acc ^= Mix64(uint64(i))
	}
	_ = acc
}
