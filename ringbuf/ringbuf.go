// Package ringbuf is a bounded single-thread ring.  When full it either
// rejects the push or, in overwrite mode, silently drops the oldest element —
// the mode of choice for "keep the last N samples" telemetry windows.
//
// Not thread-safe; the concurrent counterpart is spsc.
package ringbuf

import (
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

type Ring[T any] struct {
	alloc     mem.Allocator
	buf       rawbuf.Buffer
	block     unsafe.Pointer
	head      int
	count     int
	overwrite bool
}

// New allocates a ring of fixed capacity.  With overwrite set, pushing into
// a full ring evicts the oldest element instead of failing.
func New[T any](a mem.Allocator, capacity int, overwrite bool) *Ring[T] {
	mem.AssertNoPointers[T]()
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	r := &Ring[T]{alloc: a, overwrite: overwrite}
	stride := unsafe.Sizeof(*new(T))
	r.block = a.Alloc(uintptr(capacity)*stride, mem.MaxAlign(unsafe.Alignof(*new(T)), 1))
	r.buf = rawbuf.Fixed(r.block, capacity, stride)
	return r
}

//go:nosplit
//go:inline
func (r *Ring[T]) at(i int) *T { return (*T)(r.buf.At(i)) }

// Push appends v.  On a full ring it returns false, or in overwrite mode
// drops the oldest element and returns true.
func (r *Ring[T]) Push(v T) bool {
	if r.count == r.buf.Len() {
		if !r.overwrite {
			return false
		}
		r.head++
		if r.head == r.buf.Len() {
			r.head = 0
		}
		r.count--
	}
	tail := r.head + r.count
	if tail >= r.buf.Len() {
		tail -= r.buf.Len()
	}
	*r.at(tail) = v
	r.count++
	return true
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	v := *r.at(r.head)
	r.head++
	if r.head == r.buf.Len() {
		r.head = 0
	}
	r.count--
	return v, true
}

// Peek returns the oldest element without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return *r.at(r.head), true
}

// Count returns the number of buffered elements.
func (r *Ring[T]) Count() int { return r.count }

// Capacity returns the ring size.
func (r *Ring[T]) Capacity() int { return r.buf.Len() }

// IsValid reports whether the ring still owns storage.
func (r *Ring[T]) IsValid() bool { return r.block != nil }

// Clear drops all elements without deallocating.
func (r *Ring[T]) Clear() {
	r.head = 0
	r.count = 0
}

// Free releases backing storage exactly once.
func (r *Ring[T]) Free() {
	r.alloc.Free(r.block)
	r.block = nil
	r.buf = rawbuf.Buffer{}
	r.count = 0
}
