//go:build !amd64 || noasm

// relax_stub.go — fallback no-op for cpuRelax on platforms without a real
// PAUSE instruction.  The spin loop still makes progress; only the back-off hint is lost.

package mpsc

//go:nosplit
//go:inline
func cpuRelax() {}
