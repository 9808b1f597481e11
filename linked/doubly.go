// Package linked provides singly and doubly linked lists whose nodes are
// allocated one at a time from a raw allocator — the only structures in this
// module not backed by a flat buffer.  Node handles stay valid until the
// node is removed or the list is freed; there is no growth, so nothing ever
// invalidates them wholesale.
//
// Not thread-safe.
package linked

import (
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
)

// Node is a doubly-linked element.  The Value field may be read and written
// freely while the node is on a list.
type Node[T any] struct {
	next, prev *Node[T]
	Value      T
}

// Next returns the following node, or nil at the tail.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the preceding node, or nil at the head.
func (n *Node[T]) Prev() *Node[T] { return n.prev }

// List is a doubly linked list.  All operations are O(1).
type List[T any] struct {
	alloc mem.Allocator
	head  *Node[T]
	tail  *Node[T]
	count int
}

// New creates an empty doubly linked list drawing nodes from a.
func New[T any](a mem.Allocator) *List[T] {
	mem.AssertNoPointers[T]()
	return &List[T]{alloc: a}
}

func (l *List[T]) newNode(v T) *Node[T] {
	n := (*Node[T])(l.alloc.Alloc(
		unsafe.Sizeof(Node[T]{}), unsafe.Alignof(Node[T]{})))
	n.Value = v
	return n
}

// AddFirst prepends v and returns its node.
func (l *List[T]) AddFirst(v T) *Node[T] {
	n := l.newNode(v)
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.count++
	return n
}

// AddLast appends v and returns its node.
func (l *List[T]) AddLast(v T) *Node[T] {
	n := l.newNode(v)
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
	return n
}

// AddAfter inserts v directly after ref, which must be on this list.
func (l *List[T]) AddAfter(ref *Node[T], v T) *Node[T] {
	if ref == nil {
		panic("linked: add after nil node")
	}
	if ref == l.tail {
		return l.AddLast(v)
	}
	n := l.newNode(v)
	n.prev = ref
	n.next = ref.next
	ref.next.prev = n
	ref.next = n
	l.count++
	return n
}

// Remove unlinks n and releases its storage.  n must be on this list; using
// it afterwards is a contract violation.
func (l *List[T]) Remove(n *Node[T]) {
	if n == nil {
		panic("linked: remove of nil node")
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.count--
	l.alloc.Free(unsafe.Pointer(n))
}

// RemoveFirst removes and returns the head value, panicking on an empty
// list.
func (l *List[T]) RemoveFirst() T {
	if l.head == nil {
		panic("linked: remove from empty list")
	}
	v := l.head.Value
	l.Remove(l.head)
	return v
}

// RemoveLast removes and returns the tail value, panicking on an empty list.
func (l *List[T]) RemoveLast() T {
	if l.tail == nil {
		panic("linked: remove from empty list")
	}
	v := l.tail.Value
	l.Remove(l.tail)
	return v
}

// First returns the head node, or nil.
func (l *List[T]) First() *Node[T] { return l.head }

// Last returns the tail node, or nil.
func (l *List[T]) Last() *Node[T] { return l.tail }

// Count returns the number of nodes.
func (l *List[T]) Count() int { return l.count }

// Free releases every node.  The list is empty and reusable afterwards.
func (l *List[T]) Free() {
	for n := l.head; n != nil; {
		next := n.next
		l.alloc.Free(unsafe.Pointer(n))
		n = next
	}
	l.head = nil
	l.tail = nil
	l.count = 0
}
