// Package binheap is a binary heap over a flat raw buffer.  Storage is
// 1-indexed — slot 0 stays unused so parent/child arithmetic is pure shifts
// (parent = i/2, children = 2i and 2i+1).  Min vs max is decided by the
// ordering function supplied at allocation.
//
// Not thread-safe.
package binheap

import (
	"cmp"
	"errors"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrFull = errors.New("binheap: fixed heap full")

type Heap[T any] struct {
	alloc mem.Allocator
	buf   rawbuf.Buffer // count+1 slots, index 0 unused
	block unsafe.Pointer
	count int
	fixed bool
	// before reports strict priority of a over b: min-heaps pass <,
	// max-heaps pass >.
	before func(a, b T) bool
}

// New allocates a heap with the given element capacity and ordering.
func New[T any](a mem.Allocator, capacity int, fixed bool, before func(a, b T) bool) *Heap[T] {
	mem.AssertNoPointers[T]()
	if capacity <= 0 {
		panic("binheap: capacity must be positive")
	}
	if before == nil {
		panic("binheap: nil ordering")
	}
	h := &Heap[T]{alloc: a, fixed: fixed, before: before}
	stride := unsafe.Sizeof(*new(T))
	align := unsafe.Alignof(*new(T))
	slots := capacity + 1
	if fixed {
		h.block = a.Alloc(uintptr(slots)*stride, align)
		h.buf = rawbuf.Fixed(h.block, slots, stride)
	} else {
		h.buf = rawbuf.DynamicAligned(a, slots, stride, align)
	}
	return h
}

// NewMin allocates a min-heap over an ordered key type.
func NewMin[T cmp.Ordered](a mem.Allocator, capacity int, fixed bool) *Heap[T] {
	return New(a, capacity, fixed, func(x, y T) bool { return x < y })
}

// NewMax allocates a max-heap over an ordered key type.
func NewMax[T cmp.Ordered](a mem.Allocator, capacity int, fixed bool) *Heap[T] {
	return New(a, capacity, fixed, func(x, y T) bool { return x > y })
}

//go:nosplit
//go:inline
func (h *Heap[T]) at(i int) *T { return (*T)(h.buf.At(i)) }

// Push inserts v and bubbles it up while it outranks its parent.  Panics
// with ErrFull on a full fixed heap.
func (h *Heap[T]) Push(v T) {
	if !h.TryPush(v) {
		panic(ErrFull)
	}
}

// TryPush is Push that reports failure instead of panicking.
func (h *Heap[T]) TryPush(v T) bool {
	if h.count+1 == h.buf.Len() {
		if h.fixed {
			return false
		}
		old := h.buf
		h.buf = rawbuf.DynamicAligned(
			h.alloc, old.Len()*2, old.Stride(), unsafe.Alignof(*new(T)))
		rawbuf.Copy(&h.buf, 1, &old, 1, h.count)
		old.Free(h.alloc)
	}
	h.count++
	i := h.count
	*h.at(i) = v
	for i > 1 {
		parent := i / 2
		if !h.before(*h.at(i), *h.at(parent)) {
			break
		}
		*h.at(i), *h.at(parent) = *h.at(parent), *h.at(i)
		i = parent
	}
	return true
}

// Pop removes and returns the root: the minimum for a min-heap, the maximum
// for a max-heap.  Panics on an empty heap.
func (h *Heap[T]) Pop() T {
	v, ok := h.TryPop()
	if !ok {
		panic("binheap: pop of empty heap")
	}
	return v
}

// TryPop is Pop that reports emptiness instead of panicking.  The last
// element is swapped into the root and sifted down toward the extremal
// child.
func (h *Heap[T]) TryPop() (T, bool) {
	if h.count == 0 {
		var zero T
		return zero, false
	}
	root := *h.at(1)
	*h.at(1) = *h.at(h.count)
	h.count--
	i := 1
	for {
		child := 2 * i
		if child > h.count {
			break
		}
		if child+1 <= h.count && h.before(*h.at(child+1), *h.at(child)) {
			child++
		}
		if !h.before(*h.at(child), *h.at(i)) {
			break
		}
		*h.at(i), *h.at(child) = *h.at(child), *h.at(i)
		i = child
	}
	return root, true
}

// Peek returns the root without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if h.count == 0 {
		var zero T
		return zero, false
	}
	return *h.at(1), true
}

// Count returns the number of elements.
func (h *Heap[T]) Count() int { return h.count }

// Capacity returns the element capacity (excluding the unused slot 0).
func (h *Heap[T]) Capacity() int { return h.buf.Len() - 1 }

// IsValid reports whether the heap still owns storage.
func (h *Heap[T]) IsValid() bool { return h.buf.Len() != 0 }

// Clear drops all elements without deallocating.
func (h *Heap[T]) Clear() { h.count = 0 }

// Free releases backing storage exactly once.
func (h *Heap[T]) Free() {
	if h.fixed {
		h.alloc.Free(h.block)
		h.block = nil
	} else {
		h.buf.Free(h.alloc)
	}
	h.buf = rawbuf.Buffer{}
	h.count = 0
}
