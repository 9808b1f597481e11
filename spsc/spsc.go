// spsc.go
//
// Wait-free single-producer/single-consumer bounded queue.  One slot of
// padding disambiguates full from empty using only two counters, and
// producer/consumer cursors live on separate cache lines so neither side
// ever invalidates the other's line on its own store.
//
// ⚠️ SPSC discipline is a hard precondition: exactly one goroutine may hold
// the Producer and exactly one the Consumer.  The constructor returns the
// two roles as distinct handle types so the constraint lives in the API
// rather than a comment — but nothing detects a handle being shared across
// goroutines.  Doing so corrupts state silently.

package spsc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type queue[T any] struct {
	_     cpu.CacheLinePad
	head  uint64 // consumer cursor; written only by the consumer
	_     cpu.CacheLinePad
	tail  uint64 // producer cursor; written only by the producer
	_     cpu.CacheLinePad
	slots []T // capacity+1 so tail==head is unambiguously empty
	wait  WaitStrategy
}

// Producer is the enqueue half of a queue.  Exactly one goroutine may use it.
type Producer[T any] struct{ q *queue[T] }

// Consumer is the dequeue half of a queue.  Exactly one goroutine may use it.
type Consumer[T any] struct{ q *queue[T] }

// New allocates a queue holding up to capacity elements and returns its two
// role handles.  Blocking operations spin with the default strategy; use
// NewWith to substitute one.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	return NewWith[T](capacity, Spin{})
}

// NewWith is New with an explicit wait strategy for the blocking variants.
func NewWith[T any](capacity int, wait WaitStrategy) (*Producer[T], *Consumer[T]) {
	if capacity <= 0 {
		panic("spsc: capacity must be positive")
	}
	if wait == nil {
		panic("spsc: nil wait strategy")
	}
	q := &queue[T]{slots: make([]T, capacity+1), wait: wait}
	return &Producer[T]{q}, &Consumer[T]{q}
}

// TryEnqueue appends v, returning false when the queue is full.  The slot
// write happens before the release store to tail, so a consumer that
// observes the new tail also observes the element.
//
//go:nosplit
func (p *Producer[T]) TryEnqueue(v T) bool {
	q := p.q
	t := q.tail
	next := t + 1
	if next == uint64(len(q.slots)) {
		next = 0
	}
	if next == atomic.LoadUint64(&q.head) {
		return false // full
	}
	q.slots[t] = v
	atomic.StoreUint64(&q.tail, next)
	return true
}

// Enqueue appends v, spinning via the wait strategy until space exists.
func (p *Producer[T]) Enqueue(v T) {
	for spins := 0; !p.TryEnqueue(v); spins++ {
		p.q.wait.Wait(spins)
	}
}

// TryDequeue removes the oldest element, returning false when the queue is
// empty.  The release store to head publishes the slot back to the producer.
//
//go:nosplit
func (c *Consumer[T]) TryDequeue() (T, bool) {
	q := c.q
	h := q.head
	if h == atomic.LoadUint64(&q.tail) {
		var zero T
		return zero, false // empty
	}
	v := q.slots[h]
	next := h + 1
	if next == uint64(len(q.slots)) {
		next = 0
	}
	atomic.StoreUint64(&q.head, next)
	return v, true
}

// Dequeue removes the oldest element, spinning via the wait strategy until
// one arrives.
func (c *Consumer[T]) Dequeue() T {
	for spins := 0; ; spins++ {
		if v, ok := c.TryDequeue(); ok {
			return v
		}
		c.q.wait.Wait(spins)
	}
}

// Len approximates the number of buffered elements.  Exact only when called
// from one of the two role goroutines while the other is idle.
func (q *queue[T]) len() int {
	h := atomic.LoadUint64(&q.head)
	t := atomic.LoadUint64(&q.tail)
	n := int(t) - int(h)
	if n < 0 {
		n += len(q.slots)
	}
	return n
}

// Len reports the producer-side view of the element count.
func (p *Producer[T]) Len() int { return p.q.len() }

// Len reports the consumer-side view of the element count.
func (c *Consumer[T]) Len() int { return c.q.len() }

// Capacity returns the maximum number of buffered elements.
func (p *Producer[T]) Capacity() int { return len(p.q.slots) - 1 }

// Capacity returns the maximum number of buffered elements.
func (c *Consumer[T]) Capacity() int { return len(c.q.slots) - 1 }
