// segment.go
//
// One fixed-capacity chunk of the logically unbounded queue.  Every slot
// carries a sequence number encoding which lap of the ring owns it:
//
//	seq == pos         slot empty, expecting the producer whose tail is pos
//	seq == pos+1       slot full, expecting the consumer whose head is pos
//	seq == pos+len     slot recycled, expecting the producer one lap later
//
// Freezing sets a reserved high bit of the tail and advances it by
// capacity*2 in one atomic add, pushing every producer's expected sequence
// permanently out of reach so the segment can never accept another element.
// Carrying the frozen flag inside the counter means any single load of the
// tail is self-consistent: a captured value decodes to the same logical tail
// no matter when a freeze lands relative to the capture.  Preservation
// disables slot recycling so an enumeration walking the segment sees a
// stable view.

package mpmc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// frozenBit is carried in the tail counter itself so the frozen flag and the
// counter can never be observed out of step.
const frozenBit = uint64(1) << 63

type slot[T any] struct {
	seq  uint64
	item T
}

type segment[T any] struct {
	slots     []slot[T] // power-of-two length
	mask      uint64
	_         cpu.CacheLinePad
	head      uint64
	_         cpu.CacheLinePad
	tail      uint64
	_         cpu.CacheLinePad
	preserved uint32 // set once, under the cross-segment lock
	next      atomic.Pointer[segment[T]]
}

func newSegment[T any](length uint64) *segment[T] {
	if length == 0 || length&(length-1) != 0 {
		panic("mpmc: segment length must be a power of two")
	}
	s := &segment[T]{slots: make([]slot[T], length), mask: length - 1}
	for i := range s.slots {
		s.slots[i].seq = uint64(i)
	}
	return s
}

//go:nosplit
//go:inline
func (s *segment[T]) freezeOffset() uint64 { return uint64(len(s.slots)) * 2 }

// freeze irreversibly closes the segment for enqueues.  Must be called with
// the cross-segment lock held; idempotent.
func (s *segment[T]) freeze() {
	if atomic.LoadUint64(&s.tail)&frozenBit == 0 {
		atomic.AddUint64(&s.tail, frozenBit+s.freezeOffset())
	}
}

// decodeTail strips the freeze encoding out of a captured tail counter.  The
// capture carries its own frozen state, so the result is correct regardless
// of when the capture happened relative to a freeze.
//
//go:nosplit
//go:inline
func (s *segment[T]) decodeTail(t uint64) uint64 {
	if t&frozenBit != 0 {
		return t&^frozenBit - s.freezeOffset()
	}
	return t
}

// logicalTail is the current tail with any freeze encoding stripped back out.
func (s *segment[T]) logicalTail() uint64 {
	return s.decodeTail(atomic.LoadUint64(&s.tail))
}

// drained reports whether every published element has been consumed.  Only
// meaningful once the segment is frozen.
func (s *segment[T]) drained() bool {
	return atomic.LoadUint64(&s.head) >= s.logicalTail()
}

// countAt converts a head/tail counter pair captured by a snapshot into an
// element count.
func (s *segment[T]) countAt(h, t uint64) int {
	t = s.decodeTail(t)
	if t <= h {
		return 0
	}
	return int(t - h)
}

// tryEnqueue claims the slot at the current tail by CAS, but only while the
// slot's sequence matches the tail exactly.  A frozen bit or a full lap makes
// the claim impossible for every producer, which is the permanent "go
// allocate a successor" signal.
//
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
			return false // full
		}
		// lost a race; another producer moved the tail
		cpuRelax()
	}
}

// tryDequeue claims the slot at the current head by CAS once its sequence
// shows a published element.  When the slot ahead is claimed but not yet
// published, it spins for the in-flight producer rather than reporting a
// false empty.
//
//go:nosplit
func (s *segment[T]) tryDequeue() (T, bool) {
	for {
		h := atomic.LoadUint64(&s.head)
		sl := &s.slots[h&s.mask]
		switch d := int64(atomic.LoadUint64(&sl.seq)) - int64(h+1); {
		case d == 0:
			if atomic.CompareAndSwapUint64(&s.head, h, h+1) {
				v := sl.item
				if atomic.LoadUint32(&s.preserved) == 0 {
					// hand the slot to the producer one lap ahead
					atomic.StoreUint64(&sl.seq, h+uint64(len(s.slots)))
				}
				return v, true
			}
		case d < 0:
			if s.logicalTail() <= h {
				var zero T
				return zero, false // empty (relative to published work)
			}
			// a producer claimed the slot but has not published yet
		}
		cpuRelax()
	}
}

// itemWhenAvailable returns the element at logical position i, spinning out
// any producer that claimed the slot before the snapshot but had not yet
// published.  Valid only on preserved segments, where sequences are never
// recycled.
func (s *segment[T]) itemWhenAvailable(i uint64) T {
	sl := &s.slots[i&s.mask]
	for int64(atomic.LoadUint64(&sl.seq))-int64(i+1) < 0 {
		cpuRelax()
	}
	return sl.item
}
