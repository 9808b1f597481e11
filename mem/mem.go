// Package mem is the raw-memory substrate for every collection in this
// module: alignment arithmetic plus a pluggable block allocator.  Nothing in
// here is thread-safe except the default heap provider.
package mem

import (
	"math/bits"
	"unsafe"
)

// -----------------------------------------------------------------------------
// Alignment & size arithmetic
// -----------------------------------------------------------------------------

// AlignmentOf derives the natural alignment for elements of the given stride
// from the stride's trailing-zero count: 1, 2, 4 or 8.
//
//go:nosplit
//go:inline
func AlignmentOf(stride uintptr) uintptr {
	if stride == 0 {
		return 1
	}
	tz := bits.TrailingZeros64(uint64(stride))
	if tz > 3 {
		tz = 3
	}
	return uintptr(1) << tz
}

// AlignUp rounds size up to the next multiple of align.  align must be a
// power of two.
//
//go:nosplit
//go:inline
func AlignUp(size, align uintptr) uintptr {
	return (size + align - 1) &^ (align - 1)
}

// MaxAlign folds the largest alignment out of every operand.
//
//go:nosplit
func MaxAlign(aligns ...uintptr) uintptr {
	m := uintptr(1)
	for _, a := range aligns {
		if a > m {
			m = a
		}
	}
	return m
}

// NextPow2 returns the smallest power of two ≥ n (and 1 for n ≤ 1).
//
//go:nosplit
//go:inline
func NextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// -----------------------------------------------------------------------------
// Block primitives
// -----------------------------------------------------------------------------

// Copy moves n bytes from src to dst.  Regions may overlap.
//
//go:nosplit
func Copy(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

// Zero clears n bytes starting at p.
//
//go:nosplit
func Zero(p unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	clear(unsafe.Slice((*byte)(p), n))
}
