package mpmc

import "sync/atomic"

// spinLock is the cross-segment lock: a spin-based exclusive lock guarding
// chain mutation and multi-segment snapshots.  It is never held across an
// element's enqueue/dequeue fast path, and the only allocation performed
// under it is the successor-segment allocation itself.
type spinLock struct {
	v uint32
}

//go:nosplit
func (l *spinLock) lock() {
	for !atomic.CompareAndSwapUint32(&l.v, 0, 1) {
		cpuRelax()
	}
}

//go:nosplit
func (l *spinLock) unlock() {
	atomic.StoreUint32(&l.v, 0)
}
