package reactive

import "reflect"

// Computed is a lazily recomputed, cached derived value built atop a
// ReactiveEffect. Reading it tracks the current active effect against
// the computed's own Dep of subscribers; writing to a read-only computed
// is a no-op (with a debug-mode warning) unless a setter was supplied
// via NewWritableComputed.
type Computed[T any] struct {
	effect *ReactiveEffect
	dep    *Dep

	getter func(prev T, hasPrev bool) T
	setter func(T)

	value    T
	hasValue bool
	cacheable bool
	equals   func(a, b T) bool
}

// ComputedOption configures a Computed at construction.
type ComputedOption interface {
	applyComputed(c any)
}

type computedOptionFunc func(c any)

func (f computedOptionFunc) applyComputed(c any) { f(c) }

// Cacheable toggles whether reads are cached between dirty
// notifications. false makes every read eager (recompute unconditionally),
// matching the "cacheable=false in SSR" carve-out from the data model.
func Cacheable(v bool) ComputedOption {
	return computedOptionFunc(func(c any) {
		if cc, ok := c.(interface{ setCacheable(bool) }); ok {
			cc.setCacheable(v)
		}
	})
}

func (c *Computed[T]) setCacheable(v bool) { c.cacheable = v }

// WithComputedEquals overrides the value-changed comparison used to
// decide whether a recomputation should propagate Dirty to subscribers.
func WithComputedEquals[T any](eq func(a, b T) bool) ComputedOption {
	return computedOptionFunc(func(c any) {
		if cc, ok := c.(*Computed[T]); ok {
			cc.equals = eq
		}
	})
}

// NewComputed builds a read-only computed from a getter. getter receives
// the previously cached value (the zero value, with hasPrev=false, on
// the very first evaluation) so incremental computations are possible.
func NewComputed[T any](getter func(prev T, hasPrev bool) T, opts ...ComputedOption) *Computed[T] {
	return newComputed[T](getter, nil, opts...)
}

// NewWritableComputed builds a computed with both a getter and a setter,
// so writes are forwarded to setter instead of being dropped.
func NewWritableComputed[T any](getter func(prev T, hasPrev bool) T, setter func(T), opts ...ComputedOption) *Computed[T] {
	return newComputed[T](getter, setter, opts...)
}

func newComputed[T any](getter func(prev T, hasPrev bool) T, setter func(T), opts ...ComputedOption) *Computed[T] {
	c := &Computed[T]{
		getter:    getter,
		setter:    setter,
		cacheable: true,
		equals:    defaultEquals[T],
	}
	c.dep = newDep(func() {}, c)

	c.effect = &ReactiveEffect{id: nextID(), active: true, dirtyLevel: Dirty}
	c.effect.fn = func() any {
		c.value = c.getter(c.value, c.hasValue)
		return c.value
	}
	c.effect.notifyFn = func() {
		level := MaybeDirty
		if c.effect.dirtyLevel == MaybeDirtyComputedSideEffect {
			level = MaybeDirtyComputedSideEffect
		}
		triggerEffects(c.dep, level, c, TriggerSet, TriggerOptions{})
	}

	for _, o := range opts {
		o.applyComputed(c)
	}
	return c
}

// refreshForDirtyCheck implements depComputed: it force-resolves this
// computed (recomputing if dirty) without subscribing any outer reader,
// used only while walking another computed's dirty-resolution chain.
func (c *Computed[T]) refreshForDirtyCheck() DirtyLevel {
	if c.isDirty() {
		c.recompute()
	}
	if c.effect.dirtyLevel == MaybeDirtyComputedSideEffect {
		triggerEffects(c.dep, MaybeDirtyComputedSideEffect, c, TriggerSet, TriggerOptions{})
	}
	return c.effect.dirtyLevel
}

func (c *Computed[T]) recompute() {
	old := c.value
	hadValue := c.hasValue
	c.effect.run()
	c.hasValue = true
	if !hadValue || !c.equals(old, c.value) {
		triggerEffects(c.dep, Dirty, c, TriggerSet, TriggerOptions{})
	}
}

// isDirty resolves MaybeDirty/MaybeDirtyComputedSideEffect by walking
// this computed's own deps that are themselves owned by another
// computed, forcing each to refresh. QueryingDirty guards against
// infinite recursion through a computed dependency cycle.
func (c *Computed[T]) isDirty() bool {
	switch c.effect.dirtyLevel {
	case NotDirty:
		return false
	case Dirty:
		return true
	case QueryingDirty:
		return false
	default:
		c.effect.dirtyLevel = QueryingDirty
		for _, d := range c.effect.deps {
			if d.computed != nil {
				d.computed.refreshForDirtyCheck()
				if c.effect.dirtyLevel >= Dirty {
					break
				}
			}
		}
		if c.effect.dirtyLevel == QueryingDirty {
			c.effect.dirtyLevel = NotDirty
		}
		return c.effect.dirtyLevel == Dirty
	}
}

// Get returns the up-to-date cached value, recomputing first if dirty (or
// always, when Cacheable(false) was set), and tracks the read against the
// current active effect (if any). Tracking happens after the recompute so
// that the Dirty notification a recompute sends to this computed's
// subscribers never lands on the reader that is running right now.
func (c *Computed[T]) Get() T {
	coreMu.Lock()
	defer coreMu.Unlock()

	if !c.cacheable || c.isDirty() {
		c.recompute()
	}
	if activeEffect != nil {
		trackEffect(activeEffect, c.dep)
		if activeEffect.onTrack != nil {
			activeEffect.onTrack(TrackEvent{Effect: activeEffect, Target: c, Type: TrackGet, Key: nil})
		}
	}
	if c.effect.dirtyLevel == MaybeDirtyComputedSideEffect {
		triggerEffects(c.dep, MaybeDirtyComputedSideEffect, c, TriggerSet, TriggerOptions{})
	}
	return c.value
}

// Peek returns the cached value without subscribing the active effect —
// an untracked read, the computed analogue of an untracked signal get.
func (c *Computed[T]) Peek() T {
	coreMu.Lock()
	defer coreMu.Unlock()
	if !c.cacheable || c.isDirty() {
		c.recompute()
	}
	return c.value
}

// Set forwards to the setter supplied via NewWritableComputed. On a
// read-only computed the write is dropped; in DebugMode it additionally
// reports a warning through OnUnhandledError.
func (c *Computed[T]) Set(v T) {
	coreMu.Lock()
	defer coreMu.Unlock()
	if c.setter != nil {
		c.setter(v)
		return
	}
	if DebugMode {
		dispatchError(errReadOnlyComputedWrite, KindScheduler, nil)
	}
}

func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
