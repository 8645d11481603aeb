package reactive

import "sort"

// Job is a SchedulerJob: a callable the tick scheduler can order,
// dedup, and skip. ID nil sorts last ("Infinity"); among equal ids, Pre
// jobs run before non-Pre ones.
type Job struct {
	Fn           func()
	ID           *int
	Pre          bool
	Active       bool
	AllowRecurse bool
	// Owner, when set, attributes errors raised from this job to a
	// specific instance and lets flushPreFlushCbs filter by it.
	Owner any
}

var (
	queue      []*Job
	flushIndex int

	pendingPostFlushCbs []*Job
	activePostFlushCbs  []*Job
	postFlushIndex      int

	isFlushing    bool
	isFlushPending bool

	currentFlushDone chan struct{}

	pauseSchedulingDepth int
	pendingSchedulerFns  []func()

	recursionCounts map[*Job]int
)

// PauseScheduling defers any scheduler enqueue performed by
// triggerEffects until the matching ResetScheduling, so a batch of
// writes hands off to the scheduler as one atomic unit.
func PauseScheduling() {
	coreMu.Lock()
	defer coreMu.Unlock()
	pauseSchedulingLocked()
}

func pauseSchedulingLocked() {
	pauseSchedulingDepth++
}

// ResetScheduling resumes scheduling; when this brings the pause depth
// back to zero, every scheduler queued while paused runs now, in the
// order it was queued.
func ResetScheduling() {
	coreMu.Lock()
	defer coreMu.Unlock()
	resumeSchedulingLocked()
}

func resumeSchedulingLocked() {
	pauseSchedulingDepth--
	if pauseSchedulingDepth == 0 {
		fns := pendingSchedulerFns
		pendingSchedulerFns = nil
		for _, fn := range fns {
			fn()
		}
	}
}

func jobSortKey(j *Job) (int, bool) {
	if j.ID == nil {
		return 0, true // "infinite"
	}
	return *j.ID, false
}

func jobLess(a, b *Job) bool {
	ak, aInf := jobSortKey(a)
	bk, bInf := jobSortKey(b)
	if aInf != bInf {
		return !aInf
	}
	if aInf && bInf {
		return false
	}
	if ak != bk {
		return ak < bk
	}
	if a.Pre != b.Pre {
		return a.Pre
	}
	return false
}

func indexOfJob(list []*Job, job *Job) int {
	for i, j := range list {
		if j == job {
			return i
		}
	}
	return -1
}

// queueJob dedups job against the tail of the queue (starting at
// flushIndex, or flushIndex+1 if we're mid-flush and job.AllowRecurse),
// inserts it in (id, pre) order, and schedules a flush.
func queueJob(job *Job) {
	start := flushIndex
	if isFlushing && job.AllowRecurse {
		start = flushIndex + 1
	}
	if start < 0 {
		start = 0
	}
	if start > len(queue) {
		start = len(queue)
	}
	if indexOfJob(queue[start:], job) != -1 {
		return
	}
	insertJob(job)
	queueFlush()
}

func insertJob(job *Job) {
	if job.ID == nil {
		queue = append(queue, job)
		return
	}
	idx := sort.Search(len(queue), func(i int) bool {
		return !jobLess(queue[i], job)
	})
	queue = append(queue, nil)
	copy(queue[idx+1:], queue[idx:])
	queue[idx] = job
}

// queueFlush schedules flushJobs on the microtask loop if neither a
// flush is running nor one is already pending, and arranges for
// currentFlushDone to close once this flush settles so NextTick can
// await it.
func queueFlush() {
	if isFlushing || isFlushPending {
		return
	}
	isFlushPending = true
	done := make(chan struct{})
	currentFlushDone = done
	scheduleMicrotask(func() {
		coreMu.Lock()
		flushJobs()
		coreMu.Unlock()
		close(done)
	})
}

// invalidateJob removes job from the queue, but only if it sits strictly
// after flushIndex — a job already run, or currently running, is never
// retroactively cancelled. When no flush is running flushIndex is 0, so
// the job at the head of the queue is kept as well.
func invalidateJob(job *Job) {
	i := indexOfJob(queue, job)
	if i > flushIndex {
		queue = append(queue[:i], queue[i+1:]...)
	}
}

func runJobSafely(job *Job) {
	defer func() {
		if r := recover(); r != nil {
			kind := KindScheduler
			if job.Owner != nil {
				kind = KindComponentUpdate
			}
			dispatchError(asError(r), kind, job.Owner)
		}
	}()
	job.Fn()
}

// flushJobs runs queue then pendingPostFlushCbs to quiescence, recursing
// (via the outer for loop, not actual call recursion) whenever a job
// enqueues more work, and enforcing RecursionLimit against the same job
// object re-appearing within this one flush.
func flushJobs() {
	isFlushPending = false
	isFlushing = true
	recursionCounts = make(map[*Job]int)

	defer func() {
		isFlushing = false
		currentFlushDone = nil
		recursionCounts = nil
	}()

	for {
		sort.SliceStable(queue, func(i, j int) bool { return jobLess(queue[i], queue[j]) })

		for flushIndex = 0; flushIndex < len(queue); flushIndex++ {
			job := queue[flushIndex]
			if job == nil || !job.Active {
				continue
			}
			recursionCounts[job]++
			if recursionCounts[job] > RecursionLimit {
				dispatchError(ErrRecursionLimitExceeded, KindRecursionLimit, job.Owner)
				continue
			}
			runJobSafely(job)
		}

		flushIndex = 0
		queue = nil
		flushPostFlushCbs()

		if len(queue) == 0 && len(pendingPostFlushCbs) == 0 {
			break
		}
	}
}

func sameJob(a, b *Job) bool { return a == b }

// queuePostFlushCb appends cb to the pending post-flush callbacks,
// deduping against the batch already running (activePostFlushCbs) when a
// post-flush phase is in progress, and schedules a flush.
func queuePostFlushCb(cb *Job) {
	if len(activePostFlushCbs) == 0 {
		pendingPostFlushCbs = append(pendingPostFlushCbs, cb)
	} else {
		dup := false
		for _, j := range activePostFlushCbs {
			if sameJob(j, cb) {
				dup = true
				break
			}
		}
		if !dup {
			pendingPostFlushCbs = append(pendingPostFlushCbs, cb)
		}
	}
	queueFlush()
}

// QueuePostFlushCbs appends a pre-deduplicated bundle (e.g. lifecycle
// hooks collected together) without the single-callback dedup check.
func QueuePostFlushCbs(cbs []*Job) {
	coreMu.Lock()
	defer coreMu.Unlock()
	pendingPostFlushCbs = append(pendingPostFlushCbs, cbs...)
	queueFlush()
}

func flushPostFlushCbs() {
	if len(pendingPostFlushCbs) == 0 {
		return
	}

	seen := make(map[*Job]bool, len(pendingPostFlushCbs))
	deduped := make([]*Job, 0, len(pendingPostFlushCbs))
	for _, j := range pendingPostFlushCbs {
		if !seen[j] {
			seen[j] = true
			deduped = append(deduped, j)
		}
	}
	pendingPostFlushCbs = nil

	if len(activePostFlushCbs) > 0 {
		activePostFlushCbs = append(activePostFlushCbs, deduped...)
		return
	}

	sort.SliceStable(deduped, func(i, j int) bool { return jobLess(deduped[i], deduped[j]) })
	activePostFlushCbs = deduped

	for postFlushIndex = 0; postFlushIndex < len(activePostFlushCbs); postFlushIndex++ {
		job := activePostFlushCbs[postFlushIndex]
		if job == nil || !job.Active {
			continue
		}
		recursionCounts[job]++
		if recursionCounts[job] > RecursionLimit {
			dispatchError(ErrRecursionLimitExceeded, KindRecursionLimit, job.Owner)
			continue
		}
		runJobSafely(job)
	}
	activePostFlushCbs = nil
	postFlushIndex = 0
}

// flushPreFlushCbs pulls every Pre-flagged job out of the queue (past
// flushIndex when a flush is in progress) and runs it immediately,
// optionally restricted to jobs owned by owner. This lets pre-watchers
// observe a consistent state before the owner's own render effect runs
// later in the same pass.
func flushPreFlushCbs(owner any) {
	start := 0
	if isFlushing {
		start = flushIndex + 1
	}
	var toRun []*Job
	kept := make([]*Job, 0, len(queue))
	for i, job := range queue {
		matches := job.Pre && (owner == nil || job.Owner == owner)
		if i >= start && matches {
			toRun = append(toRun, job)
		} else {
			kept = append(kept, job)
		}
	}
	queue = kept
	for _, job := range toRun {
		runJobSafely(job)
	}
}

// NextTick schedules fn (optional) to run once the currently pending or
// running flush settles, or on the next microtask if none is pending,
// and returns a channel that closes when fn has run.
func NextTick(fn func()) <-chan struct{} {
	coreMu.Lock()
	waitOn := currentFlushDone
	pending := isFlushing || isFlushPending
	coreMu.Unlock()

	result := make(chan struct{})
	resolve := func() {
		if fn != nil {
			fn()
		}
		close(result)
	}
	if pending && waitOn != nil {
		go func() {
			<-waitOn
			resolve()
		}()
	} else {
		scheduleMicrotask(resolve)
	}
	return result
}

// QueueJob, InvalidateJob, and FlushPreFlushCbs are the locked, exported
// entry points matching spec.md's external interface names; the
// unexported queueJob/invalidateJob/flushPreFlushCbs above assume coreMu
// is already held and are used internally by Watch/Computed scheduling.
func QueueJob(job *Job) {
	coreMu.Lock()
	defer coreMu.Unlock()
	queueJob(job)
}

func InvalidateJob(job *Job) {
	coreMu.Lock()
	defer coreMu.Unlock()
	invalidateJob(job)
}

func FlushPreFlushCbs(owner any) {
	coreMu.Lock()
	defer coreMu.Unlock()
	flushPreFlushCbs(owner)
}

func QueuePostFlushCb(cb *Job) {
	coreMu.Lock()
	defer coreMu.Unlock()
	queuePostFlushCb(cb)
}
