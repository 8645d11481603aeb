package reactive

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// reentrantMutex is a goroutine-reentrant lock built on goid, the same
// dependency the tracking cursor already uses to resolve the calling
// goroutine (see assertSingleMutator below). A plain sync.Mutex cannot
// be relocked by its own holder, but every public entry point here locks
// coreMu and then runs user code (an effect's fn, a watch getter, a
// computed's getter) that reads tracked state and calls back into
// Track/Trigger/queueJob on the very same goroutine — so the lock must
// tolerate same-goroutine re-entry instead of deadlocking on it.
type reentrantMutex struct {
	mu    sync.Mutex
	owner int64
	depth int
}

// Lock acquires the lock, or — if the calling goroutine already holds
// it — just bumps the reentry depth.
func (m *reentrantMutex) Lock() {
	gid := goid.Get()
	if atomic.LoadInt64(&m.owner) == gid {
		m.depth++
		return
	}
	m.mu.Lock()
	atomic.StoreInt64(&m.owner, gid)
	m.depth = 1
}

// Unlock releases one level of re-entry, only actually unlocking the
// underlying mutex once depth returns to zero.
func (m *reentrantMutex) Unlock() {
	if atomic.LoadInt64(&m.owner) != goid.Get() {
		panic("reactive: coreMu unlocked by a goroutine that does not hold it")
	}
	m.depth--
	if m.depth == 0 {
		atomic.StoreInt64(&m.owner, 0)
		m.mu.Unlock()
	}
}

// coreMu serializes every exported entry point into the graph. The
// algorithm itself is written as if there were exactly one mutator (see
// the design notes on the single-threaded assumption), so internal,
// unexported helpers never lock — they assume the caller already holds
// coreMu. This mirrors the boundary-guard convention the rest of the
// corpus uses (a package-level or struct-level mutex at the public
// surface, unlocked internals) rather than introducing a lock per Dep or
// per ReactiveEffect, which the single-mutator model doesn't need. It is
// reentrant (see reentrantMutex) because running an effect's fn, a
// computed's getter, or a watch's getter/callback while coreMu is held
// is exactly how this engine re-enters Track/Trigger/queueJob on the
// same goroutine.
var coreMu reentrantMutex

// activeEffect and shouldTrack are the process-wide tracking cursor:
// which effect (if any) owns reads happening right now, and whether
// those reads should be recorded at all. trackingStack lets
// PauseTracking/EnableTracking/ResetTracking nest composably.
var (
	activeEffect   *ReactiveEffect
	shouldTrack    = true
	trackingStack  []bool
	lastTrackerGID int64
)

func setActiveEffect(e *ReactiveEffect) *ReactiveEffect {
	prev := activeEffect
	activeEffect = e
	return prev
}

// PauseTracking disables dependency recording for subsequent reads,
// saving the previous state so a matching ResetTracking restores it.
func PauseTracking() {
	coreMu.Lock()
	defer coreMu.Unlock()
	pauseTrackingLocked()
}

func pauseTrackingLocked() {
	trackingStack = append(trackingStack, shouldTrack)
	shouldTrack = false
}

// EnableTracking re-enables dependency recording, saving the previous
// state the same way PauseTracking does.
func EnableTracking() {
	coreMu.Lock()
	defer coreMu.Unlock()
	trackingStack = append(trackingStack, shouldTrack)
	shouldTrack = true
}

// ResetTracking pops the tracking stack, restoring whatever state was
// saved by the most recent PauseTracking or EnableTracking call. If the
// stack is empty it defaults to tracking enabled.
func ResetTracking() {
	coreMu.Lock()
	defer coreMu.Unlock()
	resetTrackingLocked()
}

func resetTrackingLocked() {
	if n := len(trackingStack); n > 0 {
		shouldTrack = trackingStack[n-1]
		trackingStack = trackingStack[:n-1]
		return
	}
	shouldTrack = true
}

// Untracked runs fn with tracking paused, regardless of what the current
// active effect is doing. Reads performed inside fn do not create
// dependency edges. This is the one place the core exposes a helper
// shaped for reactive-proxy authors rather than the graph itself.
func Untracked(fn func()) {
	coreMu.Lock()
	pauseTrackingLocked()
	coreMu.Unlock()

	defer func() {
		coreMu.Lock()
		resetTrackingLocked()
		coreMu.Unlock()
	}()
	fn()
}

// assertSingleMutator is a debug-only guard: it records which goroutine
// last entered the graph and warns (via the error handler, not a panic)
// whenever the goroutine entering differs from that one, whether or not
// the two calls overlap in time. The engine already
// serializes correctness through coreMu, so this never affects behavior
// — it exists purely to surface the "you are sharing one reactive graph
// across goroutines" mistake described in the design notes, the same
// way the teacher's debug build resolves the calling goroutine to
// attribute hook state to it.
func assertSingleMutator() {
	if !DebugMode {
		return
	}
	gid := goid.Get()
	if lastTrackerGID != 0 && lastTrackerGID != gid {
		dispatchError(
			errConcurrentMutator,
			KindScheduler,
			nil,
		)
	}
	lastTrackerGID = gid
}
