// Package circq is a circular FIFO over a raw buffer.  The cursor wraps with
// plain modular arithmetic; a dynamic queue grows by allocating a larger
// buffer and unwrapping the live window into it front-first, so a queue whose
// head sits past its tail re-linearizes correctly.
//
// Not thread-safe.  For cross-thread FIFOs use spsc, mpsc or mpmc.
package circq

import (
	"errors"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrFull = errors.New("circq: fixed queue full")

type Queue[T any] struct {
	alloc mem.Allocator
	buf   rawbuf.Buffer
	block unsafe.Pointer
	head  int
	count int
	fixed bool
}

// New allocates a queue with the given capacity.
func New[T any](a mem.Allocator, capacity int, fixed bool) *Queue[T] {
	mem.AssertNoPointers[T]()
	if capacity <= 0 {
		panic("circq: capacity must be positive")
	}
	q := &Queue[T]{alloc: a, fixed: fixed}
	stride := unsafe.Sizeof(*new(T))
	align := unsafe.Alignof(*new(T))
	if fixed {
		q.block = a.Alloc(uintptr(capacity)*stride, align)
		q.buf = rawbuf.Fixed(q.block, capacity, stride)
	} else {
		q.buf = rawbuf.DynamicAligned(a, capacity, stride, align)
	}
	return q
}

//go:nosplit
//go:inline
func (q *Queue[T]) at(i int) *T { return (*T)(q.buf.At(i)) }

// grow doubles the buffer and copies the live window to the front.  When the
// window wraps (head+count past the physical end) it takes two copies:
// head..end first, then the wrapped prefix.
func (q *Queue[T]) grow() {
	old := q.buf
	q.buf = rawbuf.DynamicAligned(
		q.alloc, old.Len()*2, old.Stride(), unsafe.Alignof(*new(T)))
	front := old.Len() - q.head
	if front > q.count {
		front = q.count
	}
	rawbuf.Copy(&q.buf, 0, &old, q.head, front)
	if wrapped := q.count - front; wrapped > 0 {
		rawbuf.Copy(&q.buf, front, &old, 0, wrapped)
	}
	old.Free(q.alloc)
	q.head = 0
}

// Enqueue appends v, growing a dynamic queue and panicking with ErrFull on a
// full fixed queue.
func (q *Queue[T]) Enqueue(v T) {
	if !q.TryEnqueue(v) {
		panic(ErrFull)
	}
}

// TryEnqueue is Enqueue that reports failure instead of panicking.
func (q *Queue[T]) TryEnqueue(v T) bool {
	if q.count == q.buf.Len() {
		if q.fixed {
			return false
		}
		q.grow()
	}
	tail := q.head + q.count
	if tail >= q.buf.Len() {
		tail -= q.buf.Len()
	}
	*q.at(tail) = v
	q.count++
	return true
}

// Dequeue removes and returns the front element, panicking when empty.
func (q *Queue[T]) Dequeue() T {
	v, ok := q.TryDequeue()
	if !ok {
		panic("circq: dequeue of empty queue")
	}
	return v
}

// TryDequeue is Dequeue that reports emptiness instead of panicking.
func (q *Queue[T]) TryDequeue() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	v := *q.at(q.head)
	q.head++
	if q.head == q.buf.Len() {
		q.head = 0
	}
	q.count--
	return v, true
}

// Peek returns the front element without removing it.
func (q *Queue[T]) Peek() T {
	if q.count == 0 {
		panic("circq: peek of empty queue")
	}
	return *q.at(q.head)
}

// Count returns the number of queued elements.
func (q *Queue[T]) Count() int { return q.count }

// Capacity returns the allocated element capacity.
func (q *Queue[T]) Capacity() int { return q.buf.Len() }

// IsValid reports whether the queue still owns storage.
func (q *Queue[T]) IsValid() bool { return q.buf.Len() != 0 }

// Clear drops all elements without deallocating.
func (q *Queue[T]) Clear() {
	q.head = 0
	q.count = 0
}

// Free releases backing storage exactly once.
func (q *Queue[T]) Free() {
	if q.fixed {
		q.alloc.Free(q.block)
		q.block = nil
	} else {
		q.buf.Free(q.alloc)
	}
	q.buf = rawbuf.Buffer{}
	q.head = 0
	q.count = 0
}
