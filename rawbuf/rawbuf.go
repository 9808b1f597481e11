// Package rawbuf provides the flat, stride-indexed byte buffer every
// collection in this module stores its elements in.  A Buffer is either
// fixed — carved out of memory owned by a parent header — or dynamic,
// owning its own block so the parent can swap it for a larger one on growth.
//
// At performs no bounds check.  Bounds are the caller's contract, enforced at
// the collection boundary, not here.
package rawbuf

import (
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
)

// Buffer is a flat run of Length elements of Stride bytes each.  Length is
// the allocated capacity, not a used count; Stride never changes after
// creation.
type Buffer struct {
	data    unsafe.Pointer
	length  int
	stride  uintptr
	dynamic bool
}

// Fixed carves a buffer out of caller-provided memory.  The region must hold
// at least length*stride bytes and stay alive for the buffer's lifetime;
// Free on the result panics because the memory belongs to the parent.
func Fixed(region unsafe.Pointer, length int, stride uintptr) Buffer {
	if region == nil || length < 0 || stride == 0 {
		panic("rawbuf: bad fixed buffer")
	}
	return Buffer{data: region, length: length, stride: stride}
}

// Dynamic allocates an owned, zeroed block for length elements, aligned to
// the stride's natural alignment.
func Dynamic(a mem.Allocator, length int, stride uintptr) Buffer {
	return DynamicAligned(a, length, stride, mem.AlignmentOf(stride))
}

// DynamicAligned is Dynamic with an explicit block alignment, for element
// types whose alignment exceeds what the stride implies.
func DynamicAligned(a mem.Allocator, length int, stride, align uintptr) Buffer {
	if length <= 0 || stride == 0 {
		panic("rawbuf: bad dynamic buffer")
	}
	return Buffer{
		data:    a.Alloc(uintptr(length)*stride, align),
		length:  length,
		stride:  stride,
		dynamic: true,
	}
}

// At returns the address of element i: base + i*stride.  No bounds check.
//
//go:nosplit
//go:inline
func (b *Buffer) At(i int) unsafe.Pointer {
	return unsafe.Add(b.data, uintptr(i)*b.stride)
}

// Base returns the start of the storage.
//
//go:nosplit
//go:inline
func (b *Buffer) Base() unsafe.Pointer { return b.data }

// Len returns the element capacity.
func (b *Buffer) Len() int { return b.length }

// Stride returns the element size in bytes.
func (b *Buffer) Stride() uintptr { return b.stride }

// IsDynamic reports whether the buffer owns its block.
func (b *Buffer) IsDynamic() bool { return b.dynamic }

// Copy moves count elements from src[srcIdx:] to dst[dstIdx:].  Both buffers
// must share a stride.
func Copy(dst *Buffer, dstIdx int, src *Buffer, srcIdx int, count int) {
	if dst.stride != src.stride {
		panic("rawbuf: stride mismatch")
	}
	mem.Copy(dst.At(dstIdx), src.At(srcIdx), uintptr(count)*src.stride)
}

// Free releases a dynamic buffer's block and poisons the buffer.  Freeing a
// fixed buffer is a caller error: its memory is owned by the parent header.
func (b *Buffer) Free(a mem.Allocator) {
	if !b.dynamic {
		panic("rawbuf: free of fixed buffer")
	}
	if b.data == nil {
		panic("rawbuf: double free")
	}
	a.Free(b.data)
	b.data = nil
	b.length = 0
}
