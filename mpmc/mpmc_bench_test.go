package mpmc

import "testing"

// BenchmarkEnqueueDequeue measures the contended mixed workload.
func BenchmarkEnqueueDequeue(b *testing.B) {
	q := New[uint64]()
	b.RunParallel(func(pb *testing.PB) {
		i := uint64(0)
		for pb.Next() {
			if i&1 == 0 {
				q.Enqueue(i)
			} else {
				q.TryDequeue()
			}
			i++
		}
	})
}

// BenchmarkUncontendedPair measures the single-threaded fast path.
func BenchmarkUncontendedPair(b *testing.B) {
	q := New[uint64]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(uint64(i))
		q.TryDequeue()
	}
}
