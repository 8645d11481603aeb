package reactive

// ReactiveEffect is a rerunnable computation that tracks exactly the
// reactive properties it read on its most recent run, and is notified
// (via its dirty level and, when present, its scheduler) when any of
// those properties changes.
type ReactiveEffect struct {
	id uint64

	fn func() any

	// notifyFn is invoked synchronously whenever triggerEffects decides
	// this effect should be notified, before any scheduler handoff.
	// Plain effects and watches leave it nil; Computed installs one to
	// propagate dirtiness to its own readers.
	notifyFn func()

	// scheduler, when set, is what actually gets enqueued on
	// notification instead of running fn inline.
	scheduler func()

	active bool

	deps       []*Dep
	depsLength int
	trackID    uint64

	runnings       int
	dirtyLevel     DirtyLevel
	shouldSchedule bool
	allowRecurse   bool

	onStop    func()
	onTrack   func(TrackEvent)
	onTrigger func(TriggerEvent)
}

// trackEffect records that e depends on dep, deduping repeated reads of
// the same property within one run and reusing dep's positional slot in
// e.deps so that only changed slots move.
func trackEffect(e *ReactiveEffect, dep *Dep) {
	if tid, ok := dep.get(e); ok && tid == e.trackID {
		return
	}
	dep.set(e, e.trackID)

	var oldDep *Dep
	if e.depsLength < len(e.deps) {
		oldDep = e.deps[e.depsLength]
	}
	if oldDep != dep {
		if oldDep != nil {
			oldDep.delete(e)
		}
		if e.depsLength < len(e.deps) {
			e.deps[e.depsLength] = dep
		} else {
			e.deps = append(e.deps, dep)
		}
	}
	e.depsLength++
}

// triggerEffects notifies every current subscriber of dep that might now
// be stale at DirtyLevel level, handing any with a scheduler off to the
// pending-schedulers list for the caller's pause/resume window to drain.
func triggerEffects(dep *Dep, level DirtyLevel, target any, typ TriggerOpType, o TriggerOptions) {
	for _, e := range dep.effects() {
		tid, current := dep.get(e)
		stillCurrent := current && tid == e.trackID
		if e.dirtyLevel < level && stillCurrent {
			if e.dirtyLevel == NotDirty {
				e.shouldSchedule = true
			}
			e.dirtyLevel = level
		}

		tid, current = dep.get(e)
		stillCurrent = current && tid == e.trackID
		if e.shouldSchedule && stillCurrent {
			if e.onTrigger != nil {
				e.onTrigger(TriggerEvent{Effect: e, Target: target, Type: typ, Key: o.Key, NewValue: o.NewValue, OldValue: o.OldValue})
			}
			if e.notifyFn != nil {
				e.notifyFn()
			}
			if (e.runnings == 0 || e.allowRecurse) && e.dirtyLevel != MaybeDirtyComputedSideEffect {
				e.shouldSchedule = false
				if e.scheduler != nil {
					pendingSchedulerFns = append(pendingSchedulerFns, e.scheduler)
				}
			}
		}
	}
}

// run executes fn, collecting a fresh set of dependency edges and
// trimming any that were not re-read this time. It assumes coreMu is
// already held.
func (e *ReactiveEffect) run() any {
	e.dirtyLevel = NotDirty
	if !e.active {
		return e.fn()
	}

	prevShouldTrack := shouldTrack
	prevActiveEffect := setActiveEffect(e)
	shouldTrack = true
	e.runnings++
	e.trackID++
	e.depsLength = 0

	defer func() {
		for i := e.depsLength; i < len(e.deps); i++ {
			e.deps[i].delete(e)
		}
		e.deps = e.deps[:e.depsLength]
		e.runnings--
		setActiveEffect(prevActiveEffect)
		shouldTrack = prevShouldTrack
	}()

	return e.fn()
}

// stop deactivates the effect: it drops out of every Dep it subscribed
// to (running cleanup on any Dep that becomes empty) and will never run
// again. Safe to call more than once.
func (e *ReactiveEffect) stop() {
	if !e.active {
		return
	}
	e.active = false
	for _, d := range e.deps {
		d.delete(e)
	}
	e.deps = nil
	e.depsLength = 0
	if e.onStop != nil {
		e.onStop()
	}
}

// EffectOption configures a ReactiveEffect created through CreateEffect.
type EffectOption interface {
	applyEffect(e *ReactiveEffect)
}

type effectOptionFunc func(e *ReactiveEffect)

func (f effectOptionFunc) applyEffect(e *ReactiveEffect) { f(e) }

// lazyMarker is a distinct EffectOption implementation (rather than an
// effectOptionFunc) purely so CreateEffect can recognize it by type
// assertion without needing a sentinel field on ReactiveEffect itself.
type lazyMarker struct{}

func (lazyMarker) applyEffect(*ReactiveEffect) {}

// Lazy skips the initial run; the caller drives the first run by
// calling EffectRunner.Run.
func Lazy() EffectOption {
	return lazyMarker{}
}

// AllowRecurse lets the scheduler re-enqueue this effect while it is
// itself running, instead of the default one-run-per-tick behavior.
func AllowRecurse() EffectOption {
	return effectOptionFunc(func(e *ReactiveEffect) { e.allowRecurse = true })
}

// OnStop registers a callback run exactly once, when Stop disposes the
// effect.
func OnStop(fn func()) EffectOption {
	return effectOptionFunc(func(e *ReactiveEffect) { e.onStop = fn })
}

// OnTrack installs a debug tap invoked synchronously on every tracked
// read this effect performs, including repeated reads of a dependency it
// already recorded in the current run.
func OnTrack(fn func(TrackEvent)) EffectOption {
	return effectOptionFunc(func(e *ReactiveEffect) { e.onTrack = fn })
}

// OnTrigger installs a debug tap invoked synchronously every time this
// effect is notified of a change.
func OnTrigger(fn func(TriggerEvent)) EffectOption {
	return effectOptionFunc(func(e *ReactiveEffect) { e.onTrigger = fn })
}

// WithScheduler overrides how a notification is handled: instead of the
// default (enqueueing the effect's own Job via queueJob), the scheduler
// function is invoked. Watch sets the scheduler field of its
// internally-built effect directly rather than through this option.
func WithScheduler(fn func()) EffectOption {
	return effectOptionFunc(func(e *ReactiveEffect) { e.scheduler = fn })
}

// EffectRunner is the handle returned by CreateEffect: it exposes the
// underlying ReactiveEffect for introspection and lets the caller
// re-trigger or stop it.
type EffectRunner struct {
	Effect *ReactiveEffect
}

// Run re-executes the effect's function, re-collecting its dependencies.
func (r *EffectRunner) Run() any {
	coreMu.Lock()
	defer coreMu.Unlock()
	return r.Effect.run()
}

// Stop deactivates the runner's effect.
func Stop(r *EffectRunner) {
	coreMu.Lock()
	defer coreMu.Unlock()
	r.Effect.stop()
}

// CreateEffect registers fn as a ReactiveEffect and runs it immediately
// unless Lazy() was supplied, tracking every reactive read fn performs
// along the way.
//
// Unless WithScheduler overrides it, notifications enqueue a stable Job
// (one per effect, created here and reused for the effect's whole
// lifetime) via queueJob rather than rerunning fn synchronously — this
// is what makes "enqueue now, run on the next microtask" and the
// at-most-once-per-tick dedup apply uniformly to every effect, not just
// watchers, matching the ordering guarantees every mutation enqueues a
// job and none run until the following microtask.
func CreateEffect(fn func(), opts ...EffectOption) *EffectRunner {
	e := &ReactiveEffect{id: nextID(), active: true}
	e.fn = func() any { fn(); return nil }

	lazy := false
	for _, o := range opts {
		if _, ok := o.(lazyMarker); ok {
			lazy = true
			continue
		}
		o.applyEffect(e)
	}

	if e.scheduler == nil {
		job := &Job{Active: true}
		job.Fn = func() {
			if e.active {
				e.run()
			}
		}
		e.scheduler = func() {
			job.AllowRecurse = e.allowRecurse
			queueJob(job)
		}
	}

	coreMu.Lock()
	defer coreMu.Unlock()
	if !lazy {
		e.run()
	}
	return &EffectRunner{Effect: e}
}
