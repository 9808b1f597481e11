package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b converts a string to a []byte **without** allocation.
// ⚠️ The result must never be written to.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Cold-Path Output — Direct Stderr Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr (fd 2), bypassing buffered
// writers and their allocations.  Cold paths only.
//
//go:nosplit
func PrintWarning(msg string) {
	syscall.Write(2, S2b(msg))
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.  Used to
// decorrelate sequential workload payloads in the soak driver and tests.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
