// Package hashed implements the bucket-chained hash collection core shared by
// the unordered map and set.  Entries live in a flat arena and link to each
// other by int32 index, never by address, so an expansion (which reallocates
// the arena and rehashes every live entry) cannot leave dangling references —
// it only invalidates indices, which are never handed out.
//
// Layout follows the fixed/dynamic split used throughout the module: a fixed
// collection is one contiguous block holding bucket heads then entries at an
// aligned offset; a dynamic collection keeps them in two separate blocks so
// either can be replaced on growth.
//
// Not thread-safe.  Exclusive single-thread access per instance is a hard
// precondition.
package hashed

import (
	"errors"
	"hash/maphash"
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
	"github.com/codewanderer42820/unmanaged/rawbuf"
)

var (
	ErrDuplicateKey = errors.New("hashed: key already exists")
	ErrKeyNotFound  = errors.New("hashed: key not found")
	ErrFull         = errors.New("hashed: fixed collection full")
)

const nilIdx = int32(-1)

// Entry state decides list membership: Used entries sit on exactly one bucket
// chain, Free entries on the free list, None entries are virgin slots beyond
// the high-water mark.
const (
	stateNone uint8 = iota
	stateFree
	stateUsed
)

type entry[K comparable, V any] struct {
	next  int32
	hash  uint32
	state uint8
	key   K
	val   V
}

// Map is a bucket-chained hash map over a raw entry arena.
type Map[K comparable, V any] struct {
	alloc    mem.Allocator
	buckets  rawbuf.Buffer // int32 chain heads, one per prime slot
	entries  rawbuf.Buffer // entry[K,V] arena
	block    unsafe.Pointer // combined block when fixed, nil when dynamic
	seed     maphash.Seed
	capacity int
	used     int // high-water slot count
	free     int // entries on the free list
	freeHead int32
	fixed    bool
}

// NewMap allocates a map whose capacity is rounded up to the next prime.
// A fixed map lives in a single block and can never grow; a dynamic map
// expands to the next prime when full.
func NewMap[K comparable, V any](a mem.Allocator, capacity int, fixed bool) *Map[K, V] {
	mem.AssertNoPointers[entry[K, V]]()
	m := &Map[K, V]{
		alloc:    a,
		seed:     maphash.MakeSeed(),
		freeHead: nilIdx,
		fixed:    fixed,
	}
	m.layout(nextPrime(max(capacity, 1)))
	return m
}

// layout materializes bucket and entry storage for the given prime capacity.
func (m *Map[K, V]) layout(capacity int) {
	stride := unsafe.Sizeof(entry[K, V]{})
	align := mem.MaxAlign(8, unsafe.Alignof(entry[K, V]{}))
	bucketBytes := uintptr(capacity) * 4
	if m.fixed {
		entryOff := mem.AlignUp(bucketBytes, align)
		m.block = m.alloc.Alloc(entryOff+uintptr(capacity)*stride, align)
		m.buckets = rawbuf.Fixed(m.block, capacity, 4)
		m.entries = rawbuf.Fixed(unsafe.Add(m.block, entryOff), capacity, stride)
	} else {
		m.buckets = rawbuf.Dynamic(m.alloc, capacity, 4)
		m.entries = rawbuf.DynamicAligned(m.alloc, capacity, stride, align)
	}
	m.capacity = capacity
	m.resetBuckets()
}

func (m *Map[K, V]) resetBuckets() {
	for i := 0; i < m.capacity; i++ {
		*(*int32)(m.buckets.At(i)) = nilIdx
	}
}

//go:nosplit
//go:inline
func (m *Map[K, V]) entryAt(i int32) *entry[K, V] {
	return (*entry[K, V])(m.entries.At(int(i)))
}

//go:nosplit
//go:inline
func (m *Map[K, V]) bucketAt(i uint32) *int32 {
	return (*int32)(m.buckets.At(int(i)))
}

//go:nosplit
//go:inline
func (m *Map[K, V]) hashOf(key K) uint32 {
	h := maphash.Comparable(m.seed, key)
	return uint32(h ^ h>>32)
}

// find walks the chain at hash%capacity comparing stored hashes before key
// equality.  Returns the entry index or nilIdx.
func (m *Map[K, V]) find(key K, hash uint32) int32 {
	for i := *m.bucketAt(hash % uint32(m.capacity)); i != nilIdx; {
		e := m.entryAt(i)
		if e.hash == hash && e.key == key {
			return i
		}
		i = e.next
	}
	return nilIdx
}

// takeSlot pops the free list, or claims the next virgin slot, or expands.
// Returns nilIdx only when the map is fixed and full.
func (m *Map[K, V]) takeSlot() int32 {
	if m.freeHead != nilIdx {
		i := m.freeHead
		m.freeHead = m.entryAt(i).next
		m.free--
		return i
	}
	if m.used == m.capacity {
		if m.fixed {
			return nilIdx
		}
		m.expand()
	}
	i := int32(m.used)
	m.used++
	return i
}

// insert links a claimed slot as the new head of its bucket chain (LIFO).
func (m *Map[K, V]) insert(i int32, key K, hash uint32, val V) {
	e := m.entryAt(i)
	head := m.bucketAt(hash % uint32(m.capacity))
	e.next = *head
	e.hash = hash
	e.state = stateUsed
	e.key = key
	e.val = val
	*head = i
}

// expand reallocates buckets and entries at the next prime and rehashes every
// used entry.  Free-list membership survives because indices are copied
// verbatim; only bucket chains are rebuilt.
func (m *Map[K, V]) expand() {
	oldEntries := m.entries
	oldBuckets := m.buckets
	capacity := nextPrime(m.capacity + 1)

	stride := oldEntries.Stride()
	align := mem.MaxAlign(8, unsafe.Alignof(entry[K, V]{}))
	m.buckets = rawbuf.Dynamic(m.alloc, capacity, 4)
	m.entries = rawbuf.DynamicAligned(m.alloc, capacity, stride, align)
	m.capacity = capacity
	m.resetBuckets()

	rawbuf.Copy(&m.entries, 0, &oldEntries, 0, m.used)
	for i := int32(0); int(i) < m.used; i++ {
		e := m.entryAt(i)
		if e.state != stateUsed {
			continue
		}
		head := m.bucketAt(e.hash % uint32(capacity))
		e.next = *head
		*head = i
	}
	oldEntries.Free(m.alloc)
	oldBuckets.Free(m.alloc)
}

// Count returns the number of live entries.
func (m *Map[K, V]) Count() int { return m.used - m.free }

// Capacity returns the current prime capacity.
func (m *Map[K, V]) Capacity() int { return m.capacity }

// IsFixed reports whether the map can never grow.
func (m *Map[K, V]) IsFixed() bool { return m.fixed }

// IsValid reports whether the map still owns storage (false after Free).
func (m *Map[K, V]) IsValid() bool { return m.capacity != 0 }

// Add inserts a new key.  It returns ErrDuplicateKey when the key is present
// and panics with ErrFull when a fixed map has no slot left — growth is
// impossible by construction, so that is a contract violation, not a
// recoverable condition.
func (m *Map[K, V]) Add(key K, val V) error {
	hash := m.hashOf(key)
	if m.find(key, hash) != nilIdx {
		return ErrDuplicateKey
	}
	i := m.takeSlot()
	if i == nilIdx {
		panic(ErrFull)
	}
	m.insert(i, key, hash, val)
	return nil
}

// TryAdd is Add with boolean semantics: false on duplicate key or on a full
// fixed map, true on success.
func (m *Map[K, V]) TryAdd(key K, val V) bool {
	hash := m.hashOf(key)
	if m.find(key, hash) != nilIdx {
		return false
	}
	i := m.takeSlot()
	if i == nilIdx {
		return false
	}
	m.insert(i, key, hash, val)
	return true
}

// Set inserts the key or overwrites its value when present.  Panics with
// ErrFull on a full fixed map.
func (m *Map[K, V]) Set(key K, val V) {
	hash := m.hashOf(key)
	if i := m.find(key, hash); i != nilIdx {
		m.entryAt(i).val = val
		return
	}
	i := m.takeSlot()
	if i == nilIdx {
		panic(ErrFull)
	}
	m.insert(i, key, hash, val)
}

// Get returns the value for key or ErrKeyNotFound.
func (m *Map[K, V]) Get(key K) (V, error) {
	if i := m.find(key, m.hashOf(key)); i != nilIdx {
		return m.entryAt(i).val, nil
	}
	var zero V
	return zero, ErrKeyNotFound
}

// TryGet is Get with boolean semantics.
func (m *Map[K, V]) TryGet(key K) (V, bool) {
	if i := m.find(key, m.hashOf(key)); i != nilIdx {
		return m.entryAt(i).val, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.find(key, m.hashOf(key)) != nilIdx
}

// Remove splices the key's entry out of its bucket chain and pushes the slot
// onto the free list.  Returns false when the key is absent.
func (m *Map[K, V]) Remove(key K) bool {
	hash := m.hashOf(key)
	head := m.bucketAt(hash % uint32(m.capacity))
	prev := nilIdx
	for i := *head; i != nilIdx; {
		e := m.entryAt(i)
		if e.hash == hash && e.key == key {
			if prev == nilIdx {
				*head = e.next
			} else {
				m.entryAt(prev).next = e.next
			}
			e.state = stateFree
			e.next = m.freeHead
			m.freeHead = i
			m.free++
			return true
		}
		prev = i
		i = e.next
	}
	return false
}

// Clear resets counts and bucket heads without touching entry storage or
// deallocating.  O(capacity) on the bucket array, not O(count).
func (m *Map[K, V]) Clear() {
	m.resetBuckets()
	m.used = 0
	m.free = 0
	m.freeHead = nilIdx
}

// Range calls f for every live entry until f returns false.  The map must
// not be mutated during the walk.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	for i := int32(0); int(i) < m.used; i++ {
		e := m.entryAt(i)
		if e.state == stateUsed && !f(e.key, e.val) {
			return
		}
	}
}

// Free releases backing storage exactly once.  Any use after Free is a
// contract violation; a second Free panics through the allocator.
func (m *Map[K, V]) Free() {
	if m.fixed {
		m.alloc.Free(m.block)
		m.block = nil
	} else {
		m.entries.Free(m.alloc)
		m.buckets.Free(m.alloc)
	}
	m.capacity = 0
	m.used = 0
	m.free = 0
	m.freeHead = nilIdx
}
