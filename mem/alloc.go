package mem

import (
	"reflect"
	"sync"
	"unsafe"
)

// Allocator is the raw-memory provider every collection allocates through.
// Alloc returns zeroed storage or panics; out-of-memory is not a recoverable
// condition anywhere in this module.  Free releases a block obtained from the
// same allocator, exactly once — a second Free of the same pointer panics.
type Allocator interface {
	Alloc(size, align uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// Heap is the default provider.  Blocks come from the Go heap but are pinned
// in a registry so the collector keeps them alive while any collection still
// points in; the bytes themselves are never scanned for pointers, which is
// why payloads stored in them must be pointer-free (see AssertNoPointers).
var Heap Allocator = &heapAllocator{blocks: make(map[uintptr][]byte)}

type heapAllocator struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte
}

func (h *heapAllocator) Alloc(size, align uintptr) unsafe.Pointer {
	if size == 0 || align == 0 || align&(align-1) != 0 {
		panic("mem: bad alloc request")
	}
	buf := make([]byte, size+align-1)
	base := uintptr(unsafe.Pointer(&buf[0]))
	p := unsafe.Pointer(&buf[(align-base%align)%align])
	h.mu.Lock()
	h.blocks[uintptr(p)] = buf
	h.mu.Unlock()
	return p
}

func (h *heapAllocator) Free(p unsafe.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.blocks[uintptr(p)]; !ok {
		panic("mem: free of unknown or already-freed block")
	}
	delete(h.blocks, uintptr(p))
}

// AssertNoPointers panics if T contains GC-visible references (pointers,
// strings, slices, maps, channels, funcs, interfaces).  Raw blocks are not
// scanned by the collector, so storing such a type would hide its referents
// and let them be reclaimed underneath the collection.  unsafe.Pointer fields
// are permitted: they are assumed to target pinned blocks from this package.
// Called once per structure allocation, never on a hot path.
func AssertNoPointers[T any]() {
	var z T
	t := reflect.TypeOf(&z).Elem()
	if containsPointers(t) {
		panic("mem: " + t.String() + " contains GC-visible pointers and cannot live in raw storage")
	}
}

func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.String, reflect.Slice, reflect.Map,
		reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return containsPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
