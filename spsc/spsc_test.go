package spsc

import "testing"

// TestFIFO drains single-threaded pushes in insertion order.
func TestFIFO(t *testing.T) {
	p, c := New[int](8)
	for i := 0; i < 8; i++ {
		if !p.TryEnqueue(i) {
			t.Fatalf("TryEnqueue(%d) failed below capacity", i)
		}
	}
	for i := 0; i < 8; i++ {
		v, ok := c.TryDequeue()
		if !ok || v != i {
			t.Fatalf("dequeue %d = %d, %v", i, v, ok)
		}
	}
}

// TestFullEmpty checks both boundary contracts: TryEnqueue fails exactly at
// capacity, TryDequeue fails exactly at empty.
func TestFullEmpty(t *testing.T) {
	p, c := New[int](2)

	if _, ok := c.TryDequeue(); ok {
		t.Fatal("dequeue from fresh queue succeeded")
	}
	if !p.TryEnqueue(1) || !p.TryEnqueue(2) {
		t.Fatal("enqueue below capacity failed")
	}
	if p.TryEnqueue(3) {
		t.Fatal("enqueue into full queue succeeded")
	}
	if p.Len() != 2 || c.Len() != 2 {
		t.Fatalf("Len = %d/%d, want 2", p.Len(), c.Len())
	}

	if v, ok := c.TryDequeue(); !ok || v != 1 {
		t.Fatalf("dequeue = %d, %v", v, ok)
	}
	if !p.TryEnqueue(3) {
		t.Fatal("enqueue after freeing a slot failed")
	}
	for _, want := range []int{2, 3} {
		if v, ok := c.TryDequeue(); !ok || v != want {
			t.Fatalf("dequeue = %d, %v, want %d", v, ok, want)
		}
	}
	if _, ok := c.TryDequeue(); ok {
		t.Fatal("dequeue from drained queue succeeded")
	}
}

// TestWraparound cycles the cursors past the slot array boundary many times.
func TestWraparound(t *testing.T) {
	p, c := New[int](3)
	for i := 0; i < 100; i++ {
		if !p.TryEnqueue(i) {
			t.Fatalf("enqueue %d failed on near-empty queue", i)
		}
		v, ok := c.TryDequeue()
		if !ok || v != i {
			t.Fatalf("cycle %d: dequeue = %d, %v", i, v, ok)
		}
	}
}

// TestCapacity reports the requested capacity from both handles.
func TestCapacity(t *testing.T) {
	p, c := New[byte](7)
	if p.Capacity() != 7 || c.Capacity() != 7 {
		t.Fatalf("Capacity = %d/%d, want 7", p.Capacity(), c.Capacity())
	}
}

// TestInvalidConstruction panics on nonsense arguments.
func TestInvalidConstruction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("zero capacity should panic")
		}
	}()
	New[int](0)
}
