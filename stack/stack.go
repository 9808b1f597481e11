// Package stack is a LIFO over a raw buffer.  Dynamic stacks double on
// overflow; fixed stacks treat Push-when-full as a fatal capacity error and
// offer TryPush as the recoverable path.
//
// Not thread-safe.
package stack

import (
	"errors"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrFull = errors.New("stack: fixed stack full")

type Stack[T any] struct {
	alloc mem.Allocator
	buf   rawbuf.Buffer
	block unsafe.Pointer
	top   int
	fixed bool
}

// New allocates a stack with the given capacity.
func New[T any](a mem.Allocator, capacity int, fixed bool) *Stack[T] {
	mem.AssertNoPointers[T]()
	if capacity <= 0 {
		panic("stack: capacity must be positive")
	}
	s := &Stack[T]{alloc: a, fixed: fixed}
	stride := unsafe.Sizeof(*new(T))
	align := unsafe.Alignof(*new(T))
	if fixed {
		s.block = a.Alloc(uintptr(capacity)*stride, align)
		s.buf = rawbuf.Fixed(s.block, capacity, stride)
	} else {
		s.buf = rawbuf.DynamicAligned(a, capacity, stride, align)
	}
	return s
}

//go:nosplit
//go:inline
func (s *Stack[T]) at(i int) *T { return (*T)(s.buf.At(i)) }

// Push places v on top, growing a dynamic stack and panicking with ErrFull
// on a full fixed stack.
func (s *Stack[T]) Push(v T) {
	if !s.TryPush(v) {
		panic(ErrFull)
	}
}

// TryPush is Push that reports failure instead of panicking.
func (s *Stack[T]) TryPush(v T) bool {
	if s.top == s.buf.Len() {
		if s.fixed {
			return false
		}
		old := s.buf
		s.buf = rawbuf.DynamicAligned(
			s.alloc, old.Len()*2, old.Stride(), unsafe.Alignof(*new(T)))
		rawbuf.Copy(&s.buf, 0, &old, 0, s.top)
		old.Free(s.alloc)
	}
	*s.at(s.top) = v
	s.top++
	return true
}

// Pop removes and returns the top element, panicking on an empty stack.
func (s *Stack[T]) Pop() T {
	if s.top == 0 {
		panic("stack: pop of empty stack")
	}
	s.top--
	return *s.at(s.top)
}

// TryPop is Pop that reports emptiness instead of panicking.
func (s *Stack[T]) TryPop() (T, bool) {
	if s.top == 0 {
		var zero T
		return zero, false
	}
	s.top--
	return *s.at(s.top), true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() T {
	if s.top == 0 {
		panic("stack: peek of empty stack")
	}
	return *s.at(s.top - 1)
}

// Count returns the number of elements.
func (s *Stack[T]) Count() int { return s.top }

// Capacity returns the allocated element capacity.
func (s *Stack[T]) Capacity() int { return s.buf.Len() }

// IsValid reports whether the stack still owns storage.
func (s *Stack[T]) IsValid() bool { return s.buf.Len() != 0 }

// Clear drops all elements without deallocating.
func (s *Stack[T]) Clear() { s.top = 0 }

// Free releases backing storage exactly once.
func (s *Stack[T]) Free() {
	if s.fixed {
		s.alloc.Free(s.block)
		s.block = nil
	} else {
		s.buf.Free(s.alloc)
	}
	s.buf = rawbuf.Buffer{}
	s.top = 0
}
