package spsc

import "testing"

// BenchmarkPingPong measures a full enqueue/dequeue round trip with both
// roles on separate goroutines.
func BenchmarkPingPong(b *testing.B) {
	p, c := New[uint64](1024)
	done := make(chan struct{})
	go func() {
		for i := 0; i < b.N; i++ {
			c.Dequeue()
		}
		close(done)
	}()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Enqueue(uint64(i))
	}
	<-done
}

// BenchmarkTryEnqueueDequeue measures the uncontended single-threaded path.
func BenchmarkTryEnqueueDequeue(b *testing.B) {
	p, c := New[uint64](1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.TryEnqueue(uint64(i))
		c.TryDequeue()
	}
}
