package reactive

import "sync/atomic"

var globalIDCounter uint64

// nextID returns a process-wide monotonically increasing identifier.
// Deps and ReactiveEffects carry one as a stable label; the graph itself
// keys subscribers and dedups jobs by pointer identity.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
