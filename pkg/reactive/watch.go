package reactive

import "reflect"

// WatchFlush selects which scheduler phase a watch's job runs in.
type WatchFlush int

const (
	// FlushPre runs before the owner's own render/update job, the
	// default. Jobs get job.Pre = true.
	FlushPre WatchFlush = iota
	// FlushPost runs after the main job batch, via queuePostFlushCb.
	FlushPost
	// FlushSync runs inline, synchronously, as part of the trigger that
	// caused it — no scheduler hop at all.
	FlushSync
)

// Owned lets a watch's owner (typically a component instance) supply a
// stable id used for job ordering (parent-before-child). flushPreFlushCbs
// filters by the owner value itself, not by this id.
type Owned interface {
	UID() int
}

// WatchSource reads one piece of reactive state. It is what a reactive
// proxy's getter closures look like from this package's point of view —
// Watch has no idea whether it's backed by a signal, a struct field, or
// anything else.
type WatchSource func() any

// WatchCallback receives the freshly computed value, the previous value
// (nil on the up-front call made for WithImmediate; otherwise the value
// seen on the watch's previous run), and a registerCleanup hook the
// callback can use to schedule work that runs before the next
// invocation or when the watch stops.
type WatchCallback func(newVal, oldVal any, onCleanup func(func()))

// WatchOptions configures Watch. Construct it with the With* functional
// options below rather than a struct literal, matching the rest of the
// package's options pattern.
type WatchOptions struct {
	Immediate bool
	Deep      bool
	DeepDepth int
	Flush     WatchFlush
	Once      bool
	OnTrack   func(TrackEvent)
	OnTrigger func(TriggerEvent)
	Owner     any
}

// WatchOption is a functional option for WatchOptions.
type WatchOption func(*WatchOptions)

func WithImmediate() WatchOption { return func(o *WatchOptions) { o.Immediate = true } }

// WithDeep enables deep traversal of the read value before returning it,
// forcing a read (and thus a track call) on every nested reactive field,
// with no depth bound. WithDeepDepth bounds the traversal to depth levels
// instead: a negative depth means unbounded, and 0 reads nothing beyond
// the source's own value. The boolean form always means unbounded; only
// the explicit depth option accepts a number.
func WithDeep() WatchOption { return func(o *WatchOptions) { o.Deep = true; o.DeepDepth = -1 } }

func WithDeepDepth(depth int) WatchOption {
	return func(o *WatchOptions) { o.Deep = true; o.DeepDepth = depth }
}

func WithFlush(f WatchFlush) WatchOption { return func(o *WatchOptions) { o.Flush = f } }
func WithOnce() WatchOption              { return func(o *WatchOptions) { o.Once = true } }
func WithWatchOnTrack(fn func(TrackEvent)) WatchOption {
	return func(o *WatchOptions) { o.OnTrack = fn }
}
func WithWatchOnTrigger(fn func(TriggerEvent)) WatchOption {
	return func(o *WatchOptions) { o.OnTrigger = fn }
}
func WithWatchOwner(owner any) WatchOption { return func(o *WatchOptions) { o.Owner = owner } }

// StopHandle stops a watch (or watchEffect) and returns it to inert
// state: its effect deactivates and any pending cleanup runs.
type StopHandle func()

func jobID(owner any) *int {
	if o, ok := owner.(Owned); ok {
		id := o.UID()
		return &id
	}
	return nil
}

// Watch builds a ReactiveEffect from source and runs cb whenever the
// value source reads changes, honoring the flush timing, immediate,
// deep, and once options.
func Watch(source WatchSource, cb WatchCallback, opts ...WatchOption) StopHandle {
	var o WatchOptions
	for _, apply := range opts {
		apply(&o)
	}
	if source == nil {
		dispatchError(ErrInvalidWatchSource, KindWatchGetter, o.Owner)
		source = func() any { return nil }
	}
	return watchImpl(source, cb, o)
}

// WatchEffect runs fn immediately and re-runs it whenever any reactive
// state it read changes, with flush timing 'pre'.
func WatchEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return watchEffectWithFlush(fn, FlushPre, opts...)
}

// WatchPostEffect is WatchEffect with flush timing 'post'.
func WatchPostEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return watchEffectWithFlush(fn, FlushPost, opts...)
}

// WatchSyncEffect is WatchEffect with flush timing 'sync'.
func WatchSyncEffect(fn func(onCleanup func(func())), opts ...WatchOption) StopHandle {
	return watchEffectWithFlush(fn, FlushSync, opts...)
}

func watchEffectWithFlush(fn func(onCleanup func(func())), flush WatchFlush, opts ...WatchOption) StopHandle {
	var o WatchOptions
	o.Flush = flush
	for _, apply := range opts {
		apply(&o)
	}
	var cleanup func()
	source := func() any {
		if cleanup != nil {
			c := cleanup
			cleanup = nil
			c()
		}
		fn(func(f func()) { cleanup = f })
		return nil
	}
	stop := watchImpl(source, nil, o)
	return func() {
		stop()
		coreMu.Lock()
		defer coreMu.Unlock()
		if cleanup != nil {
			c := cleanup
			cleanup = nil
			c()
		}
	}
}

func watchImpl(source WatchSource, cb WatchCallback, o WatchOptions) StopHandle {
	getter := func() any {
		v := source()
		if o.Deep {
			traverse(v, o.DeepDepth, make(map[uintptr]bool))
		}
		return v
	}

	var oldVal any
	hasOldVal := false
	var pendingCleanup func()
	stopped := false

	registerCleanup := func(f func()) { pendingCleanup = f }

	runGetter := func(e *ReactiveEffect) (val any) {
		defer func() {
			if r := recover(); r != nil {
				dispatchError(asError(r), KindWatchGetter, o.Owner)
			}
		}()
		return e.run()
	}

	e := &ReactiveEffect{id: nextID(), active: true}
	e.onTrack = o.OnTrack
	e.onTrigger = o.OnTrigger
	e.fn = func() any { return getter() }

	job := func() {
		if !e.active || (e.dirtyLevel == NotDirty && hasOldVal) {
			return
		}
		if cb == nil {
			runGetter(e)
			return
		}
		newVal := runGetter(e)
		changed := o.Deep || !hasOldVal || !reflect.DeepEqual(newVal, oldVal)
		if !changed {
			return
		}
		if pendingCleanup != nil {
			c := pendingCleanup
			pendingCleanup = nil
			func() {
				defer func() {
					if r := recover(); r != nil {
						dispatchError(asError(r), KindWatchCleanup, o.Owner)
					}
				}()
				c()
			}()
		}
		var reportedOld any
		if hasOldVal {
			reportedOld = oldVal
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					dispatchError(asError(r), KindWatchCallback, o.Owner)
				}
			}()
			cb(newVal, reportedOld, registerCleanup)
		}()
		oldVal = newVal
		hasOldVal = true
		if o.Once && !stopped {
			stopped = true
			e.stop()
		}
	}

	// schedJob is created once and reused for the life of the watch, so
	// queueJob/queuePostFlushCb's identity-based dedup actually collapses
	// repeated notifications within one tick instead of enqueueing a
	// fresh job every time.
	schedJob := &Job{Fn: job, ID: jobID(o.Owner), Pre: o.Flush != FlushPost, Active: true, Owner: o.Owner}

	switch o.Flush {
	case FlushSync:
		e.scheduler = job
	case FlushPost:
		e.scheduler = func() { queuePostFlushCb(schedJob) }
	default:
		e.scheduler = func() { queueJob(schedJob) }
	}

	coreMu.Lock()
	if o.Immediate {
		job()
	} else {
		oldVal = runGetter(e)
		hasOldVal = true
	}
	coreMu.Unlock()

	return func() {
		coreMu.Lock()
		defer coreMu.Unlock()
		if !stopped {
			stopped = true
			e.stop()
		}
		if pendingCleanup != nil {
			c := pendingCleanup
			pendingCleanup = nil
			c()
		}
	}
}

// deepReadable lets traverse force a nested reactive read through a
// Get() any accessor (what an external signal type may expose; a
// Computed[T] matches only when T is any) instead of only reflecting
// over plain data.
type deepReadable interface {
	Get() any
}

// traverse visits value and everything reachable from it up to depth
// levels (a negative depth means unbounded), forcing a read on any
// deepReadable it finds along the way and guarding against cycles with
// seen. It never returns an error: unreadable or unexported fields are
// skipped rather than treated as failures.
func traverse(value any, depth int, seen map[uintptr]bool) {
	if depth == 0 || value == nil {
		return
	}
	next := depth
	if depth > 0 {
		next = depth - 1
	}

	if g, ok := value.(deepReadable); ok {
		traverse(g.Get(), next, seen)
		return
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return
		}
		seen[ptr] = true
		traverse(rv.Elem().Interface(), next, seen)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if rv.Index(i).CanInterface() {
				traverse(rv.Index(i).Interface(), next, seen)
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if iter.Value().CanInterface() {
				traverse(iter.Value().Interface(), next, seen)
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Field(i)
			if f.CanInterface() {
				traverse(f.Interface(), next, seen)
			}
		}
	}
}
