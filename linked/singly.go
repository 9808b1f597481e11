package linked

import (
	"unsafe"

	"github.com/codewanderer42820/unmanaged/mem"
)

// SinglyNode is a forward-only linked element.
type SinglyNode[T any] struct {
	next  *SinglyNode[T]
	Value T
}

// Next returns the following node, or nil at the tail.
func (n *SinglyNode[T]) Next() *SinglyNode[T] { return n.next }

// SinglyList is a forward-only linked list.  Everything is O(1) except
// RemoveLast, which must walk to the second-to-last node.
type SinglyList[T any] struct {
	alloc mem.Allocator
	head  *SinglyNode[T]
	tail  *SinglyNode[T]
	count int
}

// NewSingly creates an empty singly linked list drawing nodes from a.
func NewSingly[T any](a mem.Allocator) *SinglyList[T] {
	mem.AssertNoPointers[T]()
	return &SinglyList[T]{alloc: a}
}

func (l *SinglyList[T]) newNode(v T) *SinglyNode[T] {
	n := (*SinglyNode[T])(l.alloc.Alloc(
		unsafe.Sizeof(SinglyNode[T]{}), unsafe.Alignof(SinglyNode[T]{})))
	n.Value = v
	return n
}

// AddFirst prepends v and returns its node.
func (l *SinglyList[T]) AddFirst(v T) *SinglyNode[T] {
	n := l.newNode(v)
	n.next = l.head
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.count++
	return n
}

// AddLast appends v and returns its node.
func (l *SinglyList[T]) AddLast(v T) *SinglyNode[T] {
	n := l.newNode(v)
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
func (l *SinglyList[T]) AddAfter(ref *SinglyNode[T], v T) *SinglyNode[T] {
	if ref == nil {
		panic("linked: add after nil node")
	}
	n := l.newNode(v)
	n.next = ref.next
	ref.next = n
	if ref == l.tail {
		l.tail = n
	}
	l.count++
	return n
}

// RemoveFirst removes and returns the head value, panicking on an empty
// list.
func (l *SinglyList[T]) RemoveFirst() T {
	if l.head == nil {
		panic("linked: remove from empty list")
	}
	n := l.head
	v := n.Value
	l.head = n.next
	if l.head == nil {
		l.tail = nil
	}
	l.count--
	l.alloc.Free(unsafe.Pointer(n))
	return v
}

// RemoveLast removes and returns the tail value.  O(n): the second-to-last
// node has to be found by walking from the head.
func (l *SinglyList[T]) RemoveLast() T {
	if l.tail == nil {
		panic("linked: remove from empty list")
	}
	n := l.tail
	v := n.Value
	if l.head == n {
		l.head = nil
		l.tail = nil
	} else {
		prev := l.head
		for prev.next != n {
			prev = prev.next
		}
		prev.next = nil
		l.tail = prev
	}
	l.count--
	l.alloc.Free(unsafe.Pointer(n))
	return v
}

// Remove unlinks n, reporting whether it was on the list.  O(n): the
// predecessor has to be found by walking from the head.
func (l *SinglyList[T]) Remove(n *SinglyNode[T]) bool {
	if n == nil {
		panic("linked: remove of nil node")
	}
	var prev *SinglyNode[T]
	for cur := l.head; cur != nil; cur = cur.next {
		if cur == n {
			if prev == nil {
				l.head = cur.next
			} else {
				prev.next = cur.next
			}
			if cur == l.tail {
				l.tail = prev
			}
			l.count--
			l.alloc.Free(unsafe.Pointer(cur))
			return true
		}
		prev = cur
	}
	return false
}

// First returns the head node, or nil.
func (l *SinglyList[T]) First() *SinglyNode[T] { return l.head }

// Count returns the number of nodes.
func (l *SinglyList[T]) Count() int { return l.count }

// Free releases every node.  The list is empty and reusable afterwards.
func (l *SinglyList[T]) Free() {
	for n := l.head; n != nil; {
		next := n.next
		l.alloc.Free(unsafe.Pointer(n))
		n = next
	}
	l.head = nil
	l.tail = nil
	l.count = 0
}
