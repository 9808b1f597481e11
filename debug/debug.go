// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostics (zero-alloc where it matters)
//
// Purpose:
//   - Logs infrequent error paths without introducing heap pressure.
//   - Dumps collection statistics as JSON for offline inspection.
//
// Notes:
//   - DropError/DropMessage avoid fmt entirely; direct string concatenation
//     plus a raw stderr write.
//   - DropJSON allocates (sonnet marshal) and is for genuinely cold paths:
//     shutdown dumps, soak summaries, post-mortem state capture.
//
// ⚠️ Never invoke in hot loops — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"github.com/sugawarayuuta/sonnet"

	"github.com/codewanderer42820/unmanaged/utils"
)

// DropError logs error messages with a custom alloc-free print strategy.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs debug messages with a zero-allocation print strategy.
// Used for cold-path diagnostics and infrequent state transitions.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// Stats is the common shape every collection can report through DropJSON.
type Stats struct {
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Fixed    bool   `json:"fixed,omitempty"`
}

// Collection is the introspection surface the buffer-backed structures in
// this module share.
type Collection interface {
	Count() int
	Capacity() int
}

// Snapshot captures a collection's occupancy as a Stats record, ready for
// DropJSON.
func Snapshot(kind string, c Collection) Stats {
	return Stats{Kind: kind, Count: c.Count(), Capacity: c.Capacity()}
}

// DropJSON serializes v and writes it to stderr with a trailing newline.
// Marshal failures degrade to DropError rather than panicking: diagnostics
// must never take the process down.
func DropJSON(prefix string, v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		DropError(prefix, err)
		return
	}
	utils.PrintWarning(prefix + ": " + utils.B2s(b) + "\n")
}
