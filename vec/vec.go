// Package vec is a random-access list over a raw buffer with doubling
// growth.  Two removal variants are offered: RemoveAtSwap moves the last
// element into the hole (O(1), order destroyed), RemoveAt shifts the tail
// down (O(n), order preserved).
//
// Not thread-safe.  Index checks are always on: they guard memory safety.
package vec

import (
	"errors"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrFull = errors.New("vec: fixed list full")

// List is a growable (or fixed) random-access vector of T.
type List[T any] struct {
	alloc mem.Allocator
	buf   rawbuf.Buffer
	block unsafe.Pointer
	count int
	fixed bool
}

// New allocates a list with the given capacity.
func New[T any](a mem.Allocator, capacity int, fixed bool) *List[T] {
	mem.AssertNoPointers[T]()
	if capacity <= 0 {
		panic("vec: capacity must be positive")
	}
	l := &List[T]{alloc: a, fixed: fixed}
	stride := unsafe.Sizeof(*new(T))
	align := mem.MaxAlign(mem.AlignmentOf(stride), unsafe.Alignof(*new(T)))
	if fixed {
		l.block = a.Alloc(uintptr(capacity)*stride, align)
		l.buf = rawbuf.Fixed(l.block, capacity, stride)
	} else {
		l.buf = rawbuf.DynamicAligned(a, capacity, stride, align)
	}
	return l
}

//go:nosplit
//go:inline
func (l *List[T]) at(i int) *T { return (*T)(l.buf.At(i)) }

func (l *List[T]) check(i int) {
	if i < 0 || i >= l.count {
		panic("vec: index out of range")
	}
}

func (l *List[T]) grow() {
	old := l.buf
	l.buf = rawbuf.DynamicAligned(
		l.alloc, old.Len()*2, old.Stride(), unsafe.Alignof(*new(T)))
	rawbuf.Copy(&l.buf, 0, &old, 0, l.count)
	old.Free(l.alloc)
}

// Append adds v at the end, growing a dynamic list and panicking with
// ErrFull on a full fixed list.
func (l *List[T]) Append(v T) {
	if !l.TryAppend(v) {
		panic(ErrFull)
	}
}

// TryAppend is Append that reports failure instead of panicking.
func (l *List[T]) TryAppend(v T) bool {
	if l.count == l.buf.Len() {
		if l.fixed {
			return false
		}
		l.grow()
	}
	*l.at(l.count) = v
	l.count++
	return true
}

// At returns element i.
func (l *List[T]) At(i int) T {
	l.check(i)
	return *l.at(i)
}

// Set overwrites element i.
func (l *List[T]) Set(i int, v T) {
	l.check(i)
	*l.at(i) = v
}

// RemoveAtSwap removes element i by moving the last element into its place.
func (l *List[T]) RemoveAtSwap(i int) {
	l.check(i)
	l.count--
	if i != l.count {
		*l.at(i) = *l.at(l.count)
	}
}

// RemoveAt removes element i, shifting everything after it down one slot.
func (l *List[T]) RemoveAt(i int) {
	l.check(i)
	if n := l.count - i - 1; n > 0 {
		rawbuf.Copy(&l.buf, i, &l.buf, i+1, n)
	}
	l.count--
}

// Count returns the number of elements.
func (l *List[T]) Count() int { return l.count }

// Capacity returns the allocated element capacity.
func (l *List[T]) Capacity() int { return l.buf.Len() }

// IsValid reports whether the list still owns storage.
func (l *List[T]) IsValid() bool { return l.buf.Len() != 0 }

// Clear drops all elements without deallocating.
func (l *List[T]) Clear() { l.count = 0 }

// Free releases backing storage exactly once.
func (l *List[T]) Free() {
	if l.fixed {
		l.alloc.Free(l.block)
		l.block = nil
	} else {
		l.buf.Free(l.alloc)
	}
	l.buf = rawbuf.Buffer{}
	l.count = 0
}
