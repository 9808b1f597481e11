package spsc

import (
	"sync"
	"testing"
)

// TestConcurrentOrder runs one producer against one consumer and requires
// the consumer to observe exactly 0..N-1 in order — no loss, no duplication,
// no reordering.
func TestConcurrentOrder(t *testing.T) {
	const n = 1 << 20
	p, c := New[uint64](1024)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < n; i++ {
			p.Enqueue(i)
		}
	}()

	for i := uint64(0); i < n; i++ {
		if v := c.Dequeue(); v != i {
			t.Fatalf("item %d: got %d", i, v)
		}
	}
	wg.Wait()

	if _, ok := c.TryDequeue(); ok {
		t.Fatal("queue not empty after draining all items")
	}
}

// TestConcurrentBackoff repeats the ordering check with the yielding wait
// strategy so the Gosched path gets exercised under contention.
func TestConcurrentBackoff(t *testing.T) {
	const n = 1 << 18
	p, c := NewWith[uint64](4, Backoff{Spins: 32})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < n; i++ {
			p.Enqueue(i)
		}
	}()

	for i := uint64(0); i < n; i++ {
		if v := c.Dequeue(); v != i {
			t.Fatalf("item %d: got %d", i, v)
		}
	}
	wg.Wait()
}
