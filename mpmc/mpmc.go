// Package mpmc is an unbounded multi-producer/multi-consumer queue built
// from chained fixed-capacity segments.  The enqueue/dequeue fast paths are
// lock-free CAS loops on per-slot sequence numbers; a spin-based
// cross-segment lock guards only the chain transitions (freezing a full
// segment, linking its successor, retiring a drained one) and multi-segment
// observation snapshots.  The lock is never held across an element's
// enqueue or dequeue.
//
// Ordering: elements are FIFO within a segment and segments are traversed in
// creation order, so any drain is consistent with some linearization of the
// racing enqueues — not necessarily their submission order across producers.
package mpmc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const (
	// initialSegmentLen is the slot count of a queue's first segment and of
	// any segment allocated after a preserved predecessor.
	initialSegmentLen = 32
	// maxSegmentLen caps the doubling growth of successor segments.
	maxSegmentLen = 1 << 20
)

// Queue is an unbounded MPMC FIFO.  The zero value is not usable; call New.
type Queue[T any] struct {
	cross spinLock
	_     cpu.CacheLinePad
	head  atomic.Pointer[segment[T]]
	tail  atomic.Pointer[segment[T]]
}

// New creates a queue with the default initial segment length.
func New[T any]() *Queue[T] {
	return NewWithSegmentLen[T](initialSegmentLen)
}

// NewWithSegmentLen creates a queue whose first segment holds length slots.
// length must be a power of two; small values force the multi-segment
// machinery early, which is mostly useful in tests.
func NewWithSegmentLen[T any](length int) *Queue[T] {
	s := newSegment[T](uint64(length))
	q := &Queue[T]{}
	q.head.Store(s)
	q.tail.Store(s)
	return q
}

// Enqueue appends v.  The queue is unbounded, so this always succeeds; the
// slow path allocates and links a successor segment under the cross-segment
// lock when the tail segment is full or frozen.
func (q *Queue[T]) Enqueue(v T) {
	for {
		tail := q.tail.Load()
		if tail.tryEnqueue(v) {
			return
		}
		q.growTail(tail)
	}
}

// growTail freezes the observed tail segment and links a successor.  Only
// one thread performs the transition; the rest re-read q.tail and retry.
func (q *Queue[T]) growTail(tail *segment[T]) {
	q.cross.lock()
	if q.tail.Load() == tail {
		tail.freeze()
		length := uint64(initialSegmentLen)
		if atomic.LoadUint32(&tail.preserved) == 0 {
			length = uint64(len(tail.slots)) * 2
			if length > maxSegmentLen {
				length = maxSegmentLen
			}
		}
		next := newSegment[T](length)
		tail.next.Store(next)
		q.tail.Store(next)
	}
	q.cross.unlock()
}

// TryDequeue removes the oldest element, returning false when the queue is
// empty.  A drained frozen head segment with a successor is retired under
// the cross-segment lock and the dequeue retries on the successor.
func (q *Queue[T]) TryDequeue() (T, bool) {
	for {
		head := q.head.Load()
		if v, ok := head.tryDequeue(); ok {
			return v, true
		}
		if head.next.Load() == nil {
			var zero T
			return zero, false
		}
		q.advanceHead(head)
	}
}

// advanceHead retires a drained head segment.  The segment becomes
// unreachable from the queue and is reclaimed by the runtime once every
// straggler drops its reference; eager freeing here would race readers that
// still hold the old head pointer.
func (q *Queue[T]) advanceHead(head *segment[T]) {
	q.cross.lock()
	if q.head.Load() == head && head.next.Load() != nil && head.drained() {
		q.head.Store(head.next.Load())
	}
	q.cross.unlock()
}

// TryPeek returns the oldest element without consuming it.  The read is
// optimistic: the slot's sequence and the head counter are re-validated
// after copying the element, and the copy is retried if a consumer raced
// past underneath.
func (q *Queue[T]) TryPeek() (T, bool) {
	for {
		s := q.head.Load()
		h := atomic.LoadUint64(&s.head)
		sl := &s.slots[h&s.mask]
		if atomic.LoadUint64(&sl.seq) == h+1 {
			v := sl.item
			if atomic.LoadUint64(&sl.seq) == h+1 &&
				atomic.LoadUint64(&s.head) == h &&
				q.head.Load() == s {
				return v, true
			}
			continue
		}
		if s.logicalTail() > h {
			cpuRelax() // in-flight producer
			continue
		}
		if s.next.Load() == nil {
			var zero T
			return zero, false
		}
		q.advanceHead(s)
	}
}

// Count returns a moment-in-time element count.  One- and two-segment
// queues are counted with an optimistic read that re-validates segment
// pointers and counters; three or more segments take the cross-segment lock.
func (q *Queue[T]) Count() int {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		headHead := atomic.LoadUint64(&head.head)
		tailTail := atomic.LoadUint64(&tail.tail)

		if head == tail {
			if q.head.Load() == head && q.tail.Load() == tail &&
				atomic.LoadUint64(&head.head) == headHead &&
				atomic.LoadUint64(&tail.tail) == tailTail {
				return head.countAt(headHead, tailTail)
			}
		} else if head.next.Load() == tail {
			headTail := atomic.LoadUint64(&head.tail)
			if q.head.Load() == head && q.tail.Load() == tail &&
				atomic.LoadUint64(&head.head) == headHead &&
				atomic.LoadUint64(&head.tail) == headTail &&
				atomic.LoadUint64(&tail.tail) == tailTail {
				return head.countAt(headHead, headTail) +
					tail.countAt(atomic.LoadUint64(&tail.head), tailTail)
			}
		} else {
			q.cross.lock()
			if q.head.Load() == head && q.tail.Load() == tail {
				n := 0
				for s := head; s != nil; s = s.next.Load() {
					n += s.countAt(
						atomic.LoadUint64(&s.head), atomic.LoadUint64(&s.tail))
					if s == tail {
						break
					}
				}
				q.cross.unlock()
				return n
			}
			q.cross.unlock()
		}
		cpuRelax()
	}
}

// snap freezes the tail segment, marks every reachable segment preserved and
// captures the traversal bounds.  Preservation stops slot recycling, so the
// traversal below reads stable data even while consumers keep draining.
func (q *Queue[T]) snap() (head *segment[T], headHead uint64, tail *segment[T], tailTail uint64) {
	q.cross.lock()
	head = q.head.Load()
	tail = q.tail.Load()
	for s := head; ; s = s.next.Load() {
		atomic.StoreUint32(&s.preserved, 1)
		if s == tail {
			break
		}
	}
	tail.freeze()
	headHead = atomic.LoadUint64(&head.head)
	tailTail = tail.logicalTail()
	q.cross.unlock()
	return
}

// Range calls f on a consistent snapshot of the queue's contents, oldest
// first, until f returns false.  Traversal order: the head segment from its
// snapshot head, every middle segment in full, the tail segment up to its
// snapshot tail.  Elements dequeued after the snapshot are still yielded —
// the snapshot is a moment-in-time view, and taking it permanently disables
// slot recycling in the segments it covers.
func (q *Queue[T]) Range(f func(T) bool) {
	head, headHead, tail, tailTail := q.snap()
	if head == tail {
		for i := headHead; i < tailTail; i++ {
			if !f(head.itemWhenAvailable(i)) {
				return
			}
		}
		return
	}
	for i, end := headHead, head.logicalTail(); i < end; i++ {
		if !f(head.itemWhenAvailable(i)) {
			return
		}
	}
	for s := head.next.Load(); s != tail; s = s.next.Load() {
		for i, end := uint64(0), s.logicalTail(); i < end; i++ {
			if !f(s.itemWhenAvailable(i)) {
				return
			}
		}
	}
	for i := uint64(0); i < tailTail; i++ {
		if !f(tail.itemWhenAvailable(i)) {
			return
		}
	}
}

// ToArray drains the same snapshot Range walks into a new slice.
func (q *Queue[T]) ToArray() []T {
	out := make([]T, 0, q.Count())
	q.Range(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// IsEmpty reports whether a TryPeek at this moment would fail.
func (q *Queue[T]) IsEmpty() bool {
	_, ok := q.TryPeek()
	return !ok
}
