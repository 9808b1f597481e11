package spsc

import "runtime"

// WaitStrategy decides how a blocking operation burns its nth consecutive
// miss.  Hot paths stay spin-based on purpose; this hook only shapes the
// blocking Enqueue/Dequeue variants.
type WaitStrategy interface {
	Wait(spins int)
}

// Spin relaxes the CPU every iteration and never yields.  Lowest latency,
// one core pinned while waiting.
type Spin struct{}

func (Spin) Wait(int) { cpuRelax() }

// Backoff relaxes for Spins iterations, then starts yielding the processor
// between polls so a quiet queue stops burning a core.
type Backoff struct {
	Spins int
}

func (b Backoff) Wait(spins int) {
	limit := b.Spins
	if limit <= 0 {
		limit = 256
	}
	if spins < limit {
		cpuRelax()
		return
	}
	runtime.Gosched()
}
