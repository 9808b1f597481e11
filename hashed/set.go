package hashed

import "github.com/codewanderer42820/unmanaged/mem"

// Set is the unordered set built on the same core as Map, with the value
// region collapsed to zero bytes.
type Set[K comparable] struct {
	m Map[K, struct{}]
}

// NewSet allocates a set; capacity and the fixed/dynamic split behave exactly
// as for NewMap.
func NewSet[K comparable](a mem.Allocator, capacity int, fixed bool) *Set[K] {
	return &Set[K]{m: *NewMap[K, struct{}](a, capacity, fixed)}
}

// Add inserts key, reporting false when already present or when a fixed set
// is full.
func (s *Set[K]) Add(key K) bool { return s.m.TryAdd(key, struct{}{}) }

// Contains reports membership.
func (s *Set[K]) Contains(key K) bool { return s.m.Contains(key) }

// Remove deletes key, reporting whether it was present.
func (s *Set[K]) Remove(key K) bool { return s.m.Remove(key) }

// Count returns the number of members.
func (s *Set[K]) Count() int { return s.m.Count() }

// Capacity returns the current prime capacity.
func (s *Set[K]) Capacity() int { return s.m.Capacity() }

// IsValid reports whether the set still owns storage.
func (s *Set[K]) IsValid() bool { return s.m.IsValid() }

// Clear empties the set without deallocating.
func (s *Set[K]) Clear() { s.m.Clear() }

// Range calls f for every member until f returns false.
func (s *Set[K]) Range(f func(K) bool) {
	s.m.Range(func(k K, _ struct{}) bool { return f(k) })
}

// Free releases backing storage exactly once.
func (s *Set[K]) Free() { s.m.Free() }

// UnionWith inserts every member of other.  Union with self is a no-op.
func (s *Set[K]) UnionWith(other *Set[K]) {
	if s == other {
		return
	}
	other.Range(func(k K) bool {
		s.m.TryAdd(k, struct{}{})
		return true
	})
}

// IntersectWith removes every member not present in other.  Intersection
// with self is a no-op.  This walks self's arena directly so removal during
// the scan is safe: slots are never compacted, only relinked.
func (s *Set[K]) IntersectWith(other *Set[K]) {
	if s == other {
		return
	}
	for i := int32(0); int(i) < s.m.used; i++ {
		e := s.m.entryAt(i)
		if e.state == stateUsed && !other.Contains(e.key) {
			s.m.Remove(e.key)
		}
	}
}

// ExceptWith removes every member of other.  Except with self degenerates to
// Clear.
func (s *Set[K]) ExceptWith(other *Set[K]) {
	if s == other {
		s.Clear()
		return
	}
	other.Range(func(k K) bool {
		s.m.Remove(k)
		return true
	})
}

// SymmetricExceptWith keeps members in exactly one of the two sets.  With
// self as the argument it degenerates to Clear.
func (s *Set[K]) SymmetricExceptWith(other *Set[K]) {
	if s == other {
		s.Clear()
		return
	}
	other.Range(func(k K) bool {
		if !s.m.Remove(k) {
			s.m.TryAdd(k, struct{}{})
		}
		return true
	})
}
