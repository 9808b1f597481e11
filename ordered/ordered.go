// Package ordered implements the sorted collection core: an intrusive linked
// list over a flat entry arena, kept in ascending key order.  Insert, find
// and remove are O(n) positional scans — this is a sorted linked list, not a
// balanced tree, a deliberate complexity tradeoff inherited by the sorted
// set built on top.
//
// The arena, free list and fixed/dynamic allocation split mirror the hashed
// core; there are simply no buckets, only a head index.  Growth doubles the
// arena rather than stepping through the hashed core's prime table: primes
// exist to spread bucket modulo, and with no buckets any capacity works.
//
// Not thread-safe.
package ordered

import (
	"cmp"
	"errors"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var ErrFull = errors.New("ordered: fixed collection full")

const nilIdx = int32(-1)

type entry[K cmp.Ordered] struct {
	next int32
	key  K
}

// Set is a sorted multiset: duplicate keys are permitted and a new duplicate
// lands before existing equal entries (insertion compares with strict <).
type Set[K cmp.Ordered] struct {
	alloc    mem.Allocator
	entries  rawbuf.Buffer
	block    unsafe.Pointer
	head     int32
	freeHead int32
	capacity int
	used     int
	free     int
	fixed    bool
}

// New allocates a sorted set with the given element capacity.
func New[K cmp.Ordered](a mem.Allocator, capacity int, fixed bool) *Set[K] {
	mem.AssertNoPointers[entry[K]]()
	if capacity <= 0 {
		panic("ordered: capacity must be positive")
	}
	s := &Set[K]{alloc: a, head: nilIdx, freeHead: nilIdx, fixed: fixed}
	stride := unsafe.Sizeof(entry[K]{})
	align := mem.MaxAlign(8, unsafe.Alignof(entry[K]{}))
	if fixed {
		s.block = a.Alloc(uintptr(capacity)*stride, align)
		s.entries = rawbuf.Fixed(s.block, capacity, stride)
	} else {
		s.entries = rawbuf.DynamicAligned(a, capacity, stride, align)
	}
	s.capacity = capacity
	return s
}

//go:nosplit
//go:inline
func (s *Set[K]) at(i int32) *entry[K] {
	return (*entry[K])(s.entries.At(int(i)))
}

func (s *Set[K]) takeSlot() int32 {
	if s.freeHead != nilIdx {
		i := s.freeHead
		s.freeHead = s.at(i).next
		s.free--
		return i
	}
	if s.used == s.capacity {
		if s.fixed {
			return nilIdx
		}
		s.expand()
	}
	i := int32(s.used)
	s.used++
	return i
}

// expand doubles the arena.  Links are index-based and copied verbatim, so
// no relinking pass is needed — only the block changes.
func (s *Set[K]) expand() {
	old := s.entries
	capacity := s.capacity * 2
	s.entries = rawbuf.DynamicAligned(
		s.alloc, capacity, old.Stride(), mem.MaxAlign(8, unsafe.Alignof(entry[K]{})))
	rawbuf.Copy(&s.entries, 0, &old, 0, s.used)
	old.Free(s.alloc)
	s.capacity = capacity
}

// Insert adds key at its sorted position, scanning from the head to the
// first strictly greater entry.  Returns false only when a fixed set is
// full.
func (s *Set[K]) Insert(key K) bool {
	i := s.takeSlot()
	if i == nilIdx {
		return false
	}
	e := s.at(i)
	e.key = key

	prev := nilIdx
	for cur := s.head; cur != nilIdx; cur = s.at(cur).next {
		if !(s.at(cur).key < key) {
			break
		}
		prev = cur
	}
	if prev == nilIdx {
		e.next = s.head
		s.head = i
	} else {
		p := s.at(prev)
		e.next = p.next
		p.next = i
	}
	return true
}

// MustInsert is Insert that panics with ErrFull on a full fixed set.
func (s *Set[K]) MustInsert(key K) {
	if !s.Insert(key) {
		panic(ErrFull)
	}
}

// Contains scans for key, stopping early once entries exceed it.
func (s *Set[K]) Contains(key K) bool {
	for cur := s.head; cur != nilIdx; cur = s.at(cur).next {
		k := s.at(cur).key
		if k == key {
			return true
		}
		if k > key {
			return false
		}
	}
	return false
}

// Remove deletes the first entry equal to key, reporting whether one existed.
func (s *Set[K]) Remove(key K) bool {
	prev := nilIdx
	for cur := s.head; cur != nilIdx; cur = s.at(cur).next {
		e := s.at(cur)
		if e.key > key {
			return false
		}
		if e.key == key {
			if prev == nilIdx {
				s.head = e.next
			} else {
				s.at(prev).next = e.next
			}
			e.next = s.freeHead
			s.freeHead = cur
			s.free++
			return true
		}
		prev = cur
	}
	return false
}

// Min returns the smallest key without removing it.
func (s *Set[K]) Min() (K, bool) {
	if s.head == nilIdx {
		var zero K
		return zero, false
	}
	return s.at(s.head).key, true
}

// Range walks keys in ascending order until f returns false.
func (s *Set[K]) Range(f func(K) bool) {
	for cur := s.head; cur != nilIdx; cur = s.at(cur).next {
		if !f(s.at(cur).key) {
			return
		}
	}
}

// Count returns the number of live entries.
func (s *Set[K]) Count() int { return s.used - s.free }

// Capacity returns the arena capacity.
func (s *Set[K]) Capacity() int { return s.capacity }

// IsValid reports whether the set still owns storage.
func (s *Set[K]) IsValid() bool { return s.capacity != 0 }

// Clear resets the set without deallocating.
func (s *Set[K]) Clear() {
	s.head = nilIdx
	s.freeHead = nilIdx
	s.used = 0
	s.free = 0
}

// Free releases backing storage exactly once.
func (s *Set[K]) Free() {
	if s.fixed {
		s.alloc.Free(s.block)
		s.block = nil
	} else {
		s.entries.Free(s.alloc)
	}
	s.Clear()
	s.capacity = 0
}
