// Package mpsc is the single-consumer specialization of the segmented queue
// in mpmc: any number of producers race CAS-claimed slots exactly as there,
// but the consumer owns the head cursors outright and advances them with
// plain stores, trading the dequeue-side CAS for a cheaper hot path.
//
// ⚠️ Exactly one goroutine may consume.  A second concurrent consumer
// corrupts state silently; nothing detects it.  Producers need no such care.
// For consumer-side observation (peek, snapshots) use mpmc instead.
package mpsc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const (
	initialSegmentLen = 32
	maxSegmentLen     = 1 << 20

	// frozenBit is carried in the tail counter itself so the frozen flag and
	// the counter can never be observed out of step.
	frozenBit = uint64(1) << 63
)

type slot[T any] struct {
	seq  uint64
	item T
}

type segment[T any] struct {
	slots []slot[T]
	mask  uint64
	_     cpu.CacheLinePad
	head  uint64 // consumer-owned; stored atomically for Count readers
	_     cpu.CacheLinePad
	tail  uint64
	_     cpu.CacheLinePad
	next  atomic.Pointer[segment[T]]
}

func newSegment[T any](length uint64) *segment[T] {
	if length == 0 || length&(length-1) != 0 {
		panic("mpsc: segment length must be a power of two")
	}
	s := &segment[T]{slots: make([]slot[T], length), mask: length - 1}
	for i := range s.slots {
		s.slots[i].seq = uint64(i)
	}
	return s
}

func (s *segment[T]) freezeOffset() uint64 { return uint64(len(s.slots)) * 2 }

// freeze sets the frozen bit and the producer-blocking offset in one atomic
// add, so any single load of the tail decodes consistently.  Cross-segment
// lock held; idempotent.
func (s *segment[T]) freeze() {
	if atomic.LoadUint64(&s.tail)&frozenBit == 0 {
		atomic.AddUint64(&s.tail, frozenBit+s.freezeOffset())
	}
}

//go:nosplit
//go:inline
func (s *segment[T]) decodeTail(t uint64) uint64 {
	if t&frozenBit != 0 {
		return t&^frozenBit - s.freezeOffset()
	}
	return t
}

func (s *segment[T]) logicalTail() uint64 {
	return s.decodeTail(atomic.LoadUint64(&s.tail))
}

//go:nosplit
func (s *segment[T]) tryEnqueue(v T) bool {
	for {
		t := atomic.LoadUint64(&s.tail)
		if t&frozenBit != 0 {
			return false // frozen
		}
		sl := &s.slots[t&s.mask]
		switch d := int64(atomic.LoadUint64(&sl.seq)) - int64(t); {
		case d == 0:
			if atomic.CompareAndSwapUint64(&s.tail, t, t+1) {
				sl.item = v
				atomic.StoreUint64(&sl.seq, t+1)
				return true
			}
		case d < 0:
			return false
		}
		cpuRelax()
	}
}

// dequeue is the single-consumer fast path: no CAS, the head store only
// publishes the new cursor to Count readers and producers reclaiming slots.
//
//go:nosplit
func (s *segment[T]) dequeue() (T, bool) {
	for {
		h := s.head // consumer-owned, plain read
		sl := &s.slots[h&s.mask]
		switch d := int64(atomic.LoadUint64(&sl.seq)) - int64(h+1); {
		case d == 0:
			v := sl.item
			atomic.StoreUint64(&sl.seq, h+uint64(len(s.slots)))
			atomic.StoreUint64(&s.head, h+1)
			return v, true
		case d < 0:
			if s.logicalTail() <= h {
				var zero T
				return zero, false
			}
			// claimed but unpublished slot ahead; wait the producer out
		}
		cpuRelax()
	}
}

// Queue is an unbounded multi-producer/single-consumer FIFO.
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

// NewWithSegmentLen creates a queue whose first segment holds length slots
// (a power of two).
func NewWithSegmentLen[T any](length int) *Queue[T] {
	s := newSegment[T](uint64(length))
	q := &Queue[T]{}
	q.head.Store(s)
	q.tail.Store(s)
	return q
}

// Enqueue appends v; always succeeds.  Safe for any number of goroutines.
func (q *Queue[T]) Enqueue(v T) {
	for {
		tail := q.tail.Load()
		if tail.tryEnqueue(v) {
			return
		}
		q.growTail(tail)
	}
}

func (q *Queue[T]) growTail(tail *segment[T]) {
	q.cross.lock()
	if q.tail.Load() == tail {
		tail.freeze()
		length := uint64(len(tail.slots)) * 2
		if length > maxSegmentLen {
			length = maxSegmentLen
		}
		next := newSegment[T](length)
		tail.next.Store(next)
		q.tail.Store(next)
	}
	q.cross.unlock()
}

// TryDequeue removes the oldest element.  Single consumer only.
func (q *Queue[T]) TryDequeue() (T, bool) {
	for {
		head := q.head.Load()
		if v, ok := head.dequeue(); ok {
			return v, true
		}
		next := head.next.Load()
		if next == nil {
			var zero T
			return zero, false
		}
		// head is frozen and drained; retire it under the chain lock so the
		// transition cannot interleave with a concurrent growTail
		q.cross.lock()
		if q.head.Load() == head {
			q.head.Store(next)
		}
		q.cross.unlock()
	}
}

// Drain dequeues until the queue reports empty, passing each element to f.
// Returns the number drained.  Single consumer only.
func (q *Queue[T]) Drain(f func(T)) int {
	n := 0
	for {
		v, ok := q.TryDequeue()
		if !ok {
			return n
		}
		f(v)
		n++
	}
}

// Count returns a moment-in-time element count.  Single-segment queues are
// counted optimistically; longer chains take the cross-segment lock.
func (q *Queue[T]) Count() int {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if head == tail {
			h := atomic.LoadUint64(&head.head)
			t := head.logicalTail()
			if q.head.Load() == head && q.tail.Load() == tail &&
				atomic.LoadUint64(&head.head) == h {
				if t <= h {
					return 0
				}
				return int(t - h)
			}
			cpuRelax()
			continue
		}
		q.cross.lock()
		if q.head.Load() == head && q.tail.Load() == tail {
			n := 0
			for s := head; s != nil; s = s.next.Load() {
				h := atomic.LoadUint64(&s.head)
				if t := s.logicalTail(); t > h {
					n += int(t - h)
				}
				if s == tail {
					break
				}
			}
			q.cross.unlock()
			return n
		}
		q.cross.unlock()
		cpuRelax()
	}
}
