// Package bitset packs bits into 64-bit words over a raw buffer.  Bulk
// boolean operations run word-wise; set-bit extraction scans hierarchically
// word → byte → bit so sparse sets skip dead space with cheap branches.
//
// Not thread-safe.
package bitset

import (
	"errors"
	"math/bits"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrSizeMismatch = errors.New("bitset: size mismatch")

const wordBits = 64

type Set struct {
	alloc mem.Allocator
	buf   rawbuf.Buffer // uint64 words
	block unsafe.Pointer
	size  int // bit count
}

// New allocates a zeroed set of the given bit length.
func New(a mem.Allocator, size int) *Set {
	if size <= 0 {
		panic("bitset: size must be positive")
	}
	words := (size + wordBits - 1) / wordBits
	s := &Set{alloc: a, size: size}
	s.block = a.Alloc(uintptr(words)*8, 8)
	s.buf = rawbuf.Fixed(s.block, words, 8)
	return s
}

//go:nosplit
//go:inline
func (s *Set) word(i int) *uint64 { return (*uint64)(s.buf.At(i)) }

func (s *Set) check(i int) {
	if i < 0 || i >= s.size {
		panic("bitset: index out of range")
	}
}

// Set turns bit i on.
//
//go:nosplit
func (s *Set) Set(i int) {
	s.check(i)
	*s.word(i/wordBits) |= 1 << (uint(i) % wordBits)
}

// Clear turns bit i off.
//
//go:nosplit
func (s *Set) Clear(i int) {
	s.check(i)
	*s.word(i/wordBits) &^= 1 << (uint(i) % wordBits)
}

// Test reports whether bit i is on.
//
//go:nosplit
func (s *Set) Test(i int) bool {
	s.check(i)
	return *s.word(i/wordBits)&(1<<(uint(i)%wordBits)) != 0
}

// Len returns the bit length.
func (s *Set) Len() int { return s.size }

// Count returns the number of set bits.
func (s *Set) Count() int {
	n := 0
	for i := 0; i < s.buf.Len(); i++ {
		n += bits.OnesCount64(*s.word(i))
	}
	return n
}

// And intersects s with other in place.  Differently-sized sets are an
// error, not a truncation.
func (s *Set) And(other *Set) error {
	if err := s.sameSize(other); err != nil {
		return err
	}
	for i := 0; i < s.buf.Len(); i++ {
		*s.word(i) &= *other.word(i)
	}
	return nil
}

// Or unions other into s in place.
func (s *Set) Or(other *Set) error {
	if err := s.sameSize(other); err != nil {
		return err
	}
	for i := 0; i < s.buf.Len(); i++ {
		*s.word(i) |= *other.word(i)
	}
	return nil
}

// Xor symmetric-differences other into s in place.
func (s *Set) Xor(other *Set) error {
	if err := s.sameSize(other); err != nil {
		return err
	}
	for i := 0; i < s.buf.Len(); i++ {
		*s.word(i) ^= *other.word(i)
	}
	return nil
}

func (s *Set) sameSize(other *Set) error {
	if s.size != other.size {
		return ErrSizeMismatch
	}
	return nil
}

// Indices appends the index of every set bit, ascending, to dst.  The scan
// runs word → byte → bit: zero words are skipped in one compare, zero bytes
// in one mask, and surviving bytes are drained by trailing-zero extraction.
func (s *Set) Indices(dst []int) []int {
	for w := 0; w < s.buf.Len(); w++ {
		word := *s.word(w)
		if word == 0 {
			continue
		}
		base := w * wordBits
		for byteIdx := 0; byteIdx < 8; byteIdx++ {
			b := word >> (uint(byteIdx) * 8) & 0xff
			if b == 0 {
				continue
			}
			off := base + byteIdx*8
			for b != 0 {
				dst = append(dst, off+bits.TrailingZeros64(b))
				b &= b - 1
			}
		}
	}
	return dst
}

// ClearAll zeroes every word without deallocating.
func (s *Set) ClearAll() {
	mem.Zero(s.buf.Base(), uintptr(s.buf.Len())*8)
}

// IsValid reports whether the set still owns storage.
func (s *Set) IsValid() bool { return s.block != nil }

// Free releases backing storage exactly once.
func (s *Set) Free() {
	s.alloc.Free(s.block)
	s.block = nil
	s.buf = rawbuf.Buffer{}
	s.size = 0
}
