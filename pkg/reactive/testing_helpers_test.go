package reactive

// resetGlobalState clears every process-wide singleton this package
// keeps, so tests can run in the same binary without leaking scheduler
// or tracking state between them. Mirrors how the teacher's tests rely
// on a fresh Owner per test instead of a package reset — this package
// has no Owner to scope state to, so tests reset explicitly.
func resetGlobalState() {
	coreMu.Lock()
	defer coreMu.Unlock()

	activeEffect = nil
	shouldTrack = true
	trackingStack = nil
	lastTrackerGID = 0

	queue = nil
	flushIndex = 0
	pendingPostFlushCbs = nil
	activePostFlushCbs = nil
	postFlushIndex = 0
	isFlushing = false
	isFlushPending = false
	currentFlushDone = nil
	pauseSchedulingDepth = 0
	pendingSchedulerFns = nil
	recursionCounts = nil

	DefaultGraph = NewTargetMap()
	RecursionLimit = 100
	DebugMode = false
}
