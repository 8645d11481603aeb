// Package reactor provides the public API for this module's fine-grained
// reactivity and tick scheduler core.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/reactor"
//
// Usage:
//
//	count := &myReactiveCell{}
//	r := reactor.CreateEffect(func() {
//	    fmt.Println("count is now", count.Get())
//	})
//	defer reactor.Stop(r)
package reactor

import (
	core "github.com/vango-dev/reactor/pkg/reactive"
)

// =============================================================================
// Tracking graph (re-export from pkg/reactive)
// =============================================================================

// TargetMap is a two-level map from a reactive target's identity to its
// property keys to the Dep that holds the current subscribers.
type TargetMap = core.TargetMap

// Dep is the set of effects subscribed to one (target, key) pair.
type Dep = core.Dep

// TrackOpType classifies why a read is being tracked.
type TrackOpType = core.TrackOpType

// TriggerOpType classifies what kind of mutation caused a trigger.
type TriggerOpType = core.TriggerOpType

// TargetKind distinguishes array/map-like targets for trigger fan-out.
type TargetKind = core.TargetKind

const (
	TrackGet     = core.TrackGet
	TrackHas     = core.TrackHas
	TrackIterate = core.TrackIterate
)

const (
	TriggerSet    = core.TriggerSet
	TriggerAdd    = core.TriggerAdd
	TriggerDelete = core.TriggerDelete
	TriggerClear  = core.TriggerClear
)

const (
	TargetPlain   = core.TargetPlain
	TargetArray   = core.TargetArray
	TargetMapLike = core.TargetMapLike
	TargetSetLike = core.TargetSetLike
)

// IterateKey, MapKeyIterateKey, and LengthKey are the synthetic dependency
// keys used for whole-collection iteration and array length tracking.
var (
	IterateKey       = core.IterateKey
	MapKeyIterateKey = core.MapKeyIterateKey
	LengthKey        = core.LengthKey
)

// TriggerOptions carries the extra detail a Trigger call needs beyond the
// (target, type) pair: the key written, old/new values, and array length
// bookkeeping.
type TriggerOptions = core.TriggerOptions

// TrackEvent and TriggerEvent are what OnTrack/OnTrigger taps receive.
type TrackEvent = core.TrackEvent
type TriggerEvent = core.TriggerEvent

// NewTargetMap constructs an independent dependency graph. Most callers
// want the shared DefaultGraph instead.
func NewTargetMap() *TargetMap { return core.NewTargetMap() }

// DefaultGraph is the process-wide dependency graph that Track/Trigger use.
var DefaultGraph = core.DefaultGraph

// Track records that the currently active effect, if any, depends on
// (target, key).
func Track(target any, typ TrackOpType, key any) { core.Track(target, typ, key) }

// Trigger notifies every effect subscribed to (target, opts.Key) that the
// property may have changed.
func Trigger(target any, typ TriggerOpType, opts TriggerOptions) {
	core.Trigger(target, typ, opts)
}

// =============================================================================
// Tracking context (re-export from pkg/reactive)
// =============================================================================

// PauseTracking suspends dependency collection until the matching
// ResetTracking/EnableTracking call.
func PauseTracking() { core.PauseTracking() }

// EnableTracking turns dependency collection on, saving the previous
// state the same way PauseTracking does.
func EnableTracking() { core.EnableTracking() }

// ResetTracking restores the tracking state saved by the most recent
// PauseTracking or EnableTracking call (tracking on if none is saved).
func ResetTracking() { core.ResetTracking() }

// Untracked runs fn with tracking paused, restoring the previous tracking
// state afterward even if fn panics.
func Untracked(fn func()) { core.Untracked(fn) }

// =============================================================================
// Effects (re-export from pkg/reactive)
// =============================================================================

// EffectRunner is the handle returned by CreateEffect.
type EffectRunner = core.EffectRunner

// EffectOption configures a ReactiveEffect created through CreateEffect.
type EffectOption = core.EffectOption

// CreateEffect registers fn as a rerunnable reactive effect and runs it
// immediately unless Lazy() was supplied.
func CreateEffect(fn func(), opts ...EffectOption) *EffectRunner {
	return core.CreateEffect(fn, opts...)
}

// Stop deactivates an effect created by CreateEffect. Watch and the watch
// effect variants return their own StopHandle instead.
func Stop(r *EffectRunner) { core.Stop(r) }

// Lazy skips an effect's initial run; the caller drives the first run via
// EffectRunner.Run.
func Lazy() EffectOption { return core.Lazy() }

// AllowRecurse lets the scheduler re-enqueue an effect while it is itself
// still running.
func AllowRecurse() EffectOption { return core.AllowRecurse() }

// OnStop registers a callback run exactly once when Stop disposes the
// effect.
func OnStop(fn func()) EffectOption { return core.OnStop(fn) }

// OnTrack installs a debug tap invoked on every tracked read the effect
// performs, including repeated reads of a dependency it already has.
func OnTrack(fn func(TrackEvent)) EffectOption { return core.OnTrack(fn) }

// OnTrigger installs a debug tap invoked whenever the effect is notified
// of a change.
func OnTrigger(fn func(TriggerEvent)) EffectOption { return core.OnTrigger(fn) }

// =============================================================================
// Computed (re-export from pkg/reactive)
// =============================================================================

// Computed is a lazily-cached derived value.
type Computed[T any] = core.Computed[T]

// ComputedOption configures a Computed created through NewComputed.
type ComputedOption = core.ComputedOption

// NewComputed creates a read-only computed value from getter.
func NewComputed[T any](getter func(prev T, hasPrev bool) T, opts ...ComputedOption) *Computed[T] {
	return core.NewComputed(getter, opts...)
}

// NewWritableComputed creates a computed value with a custom setter,
// mirroring a writable ref/memo pair.
func NewWritableComputed[T any](getter func(prev T, hasPrev bool) T, setter func(T), opts ...ComputedOption) *Computed[T] {
	return core.NewWritableComputed(getter, setter, opts...)
}

// Cacheable toggles whether a Computed caches between reads (true by
// default) or recomputes on every Get.
func Cacheable(v bool) ComputedOption { return core.Cacheable(v) }

// WithComputedEquals supplies a custom equality check used to decide
// whether a recompute actually changed the cached value.
func WithComputedEquals[T any](eq func(a, b T) bool) ComputedOption {
	return core.WithComputedEquals(eq)
}

// =============================================================================
// Scheduler (re-export from pkg/reactive)
// =============================================================================

// Job is a schedulable unit the tick scheduler orders, dedups, and runs.
type Job = core.Job

// QueueJob enqueues job for the next flush, deduping by pointer identity.
func QueueJob(job *Job) { core.QueueJob(job) }

// InvalidateJob removes job from the queue if it sits after the current
// flush position; when no flush is running, the job at the head of the
// queue is kept.
func InvalidateJob(job *Job) { core.InvalidateJob(job) }

// QueuePostFlushCb schedules cb to run once the main job queue has
// drained for this flush.
func QueuePostFlushCb(cb *Job) { core.QueuePostFlushCb(cb) }

// QueuePostFlushCbs schedules a pre-deduplicated batch of post-flush
// callbacks.
func QueuePostFlushCbs(cbs []*Job) { core.QueuePostFlushCbs(cbs) }

// FlushPreFlushCbs runs every pending Pre-flagged job immediately,
// optionally restricted to a given owner.
func FlushPreFlushCbs(owner any) { core.FlushPreFlushCbs(owner) }

// PauseScheduling defers scheduler enqueues from trigger until the
// matching ResetScheduling, batching a run of writes into one flush.
func PauseScheduling() { core.PauseScheduling() }

// ResetScheduling resumes scheduling paused by PauseScheduling.
func ResetScheduling() { core.ResetScheduling() }

// NextTick schedules fn, if non-nil, to run once the pending or running
// flush settles, and returns a channel that closes when it has.
func NextTick(fn func()) <-chan struct{} { return core.NextTick(fn) }

// RecursionLimit bounds how many times the scheduler reruns the same job
// within a single flush before giving up on it.
var RecursionLimit = &core.RecursionLimit

// =============================================================================
// Watch facade (re-export from pkg/reactive)
// =============================================================================

// WatchFlush selects which scheduler phase a watch's job runs in.
type WatchFlush = core.WatchFlush

const (
	FlushPre  = core.FlushPre
	FlushPost = core.FlushPost
	FlushSync = core.FlushSync
)

// WatchSource reads one piece of reactive state for Watch to observe.
type WatchSource = core.WatchSource

// WatchCallback receives a watch's new value, its previous value, and a
// registerCleanup hook.
type WatchCallback = core.WatchCallback

// WatchOption configures Watch, WatchEffect, WatchPostEffect, and
// WatchSyncEffect.
type WatchOption = core.WatchOption

// StopHandle stops a watch or watch effect.
type StopHandle = core.StopHandle

// Owned lets a watch's owner supply a stable id for job ordering;
// FlushPreFlushCbs filters by the owner value itself.
type Owned = core.Owned

// Watch runs cb whenever the value source reads changes.
func Watch(source WatchSource, cb WatchCallback, opts ...WatchOption) StopHandle {
	return core.Watch(source, cb, opts...)
}

// WatchEffect runs fn immediately and reruns it whenever any reactive
// state it read changes, flushing pre.
func WatchEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return core.WatchEffect(fn, opts...)
}

// WatchPostEffect is WatchEffect with post-flush timing.
func WatchPostEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return core.WatchPostEffect(fn, opts...)
}

// WatchSyncEffect is WatchEffect with synchronous, inline timing.
func WatchSyncEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return core.WatchSyncEffect(fn, opts...)
}

func WithImmediate() WatchOption                        { return core.WithImmediate() }
func WithDeep() WatchOption                              { return core.WithDeep() }
func WithDeepDepth(depth int) WatchOption                { return core.WithDeepDepth(depth) }
func WithFlush(f WatchFlush) WatchOption                 { return core.WithFlush(f) }
func WithOnce() WatchOption                              { return core.WithOnce() }
func WithWatchOnTrack(fn func(TrackEvent)) WatchOption   { return core.WithWatchOnTrack(fn) }
func WithWatchOnTrigger(fn func(TriggerEvent)) WatchOption {
	return core.WithWatchOnTrigger(fn)
}
func WithWatchOwner(owner any) WatchOption { return core.WithWatchOwner(owner) }

// =============================================================================
// Errors and debug configuration (re-export from pkg/reactive)
// =============================================================================

// ErrorKind classifies where an unhandled error originated.
type ErrorKind = core.ErrorKind

const (
	KindScheduler       = core.KindScheduler
	KindComponentUpdate = core.KindComponentUpdate
	KindWatchGetter     = core.KindWatchGetter
	KindWatchCallback   = core.KindWatchCallback
	KindWatchCleanup    = core.KindWatchCleanup
	KindRecursionLimit  = core.KindRecursionLimit
)

// ErrorHandler receives an error captured from user code.
type ErrorHandler = core.ErrorHandler

var (
	ErrRecursionLimitExceeded = core.ErrRecursionLimitExceeded
	ErrInvalidWatchSource     = core.ErrInvalidWatchSource
)

// OnUnhandledError is invoked for every error captured from user code; the
// default handler logs and never aborts the flush. Replace it to route
// errors into an application's own reporting path.
var OnUnhandledError = &core.OnUnhandledError

// DebugMode gates the warning emitted when code writes to a read-only
// Computed, and the single-mutator assertion in the tracking context.
var DebugMode = &core.DebugMode
