package reactive

import "sync"

// TrackOpType identifies why a reactive proxy is calling Track.
type TrackOpType int

const (
	TrackGet TrackOpType = iota
	TrackHas
	TrackIterate
)

// TriggerOpType identifies the kind of mutation a reactive proxy made
// before calling Trigger.
type TriggerOpType int

const (
	TriggerSet TriggerOpType = iota
	TriggerAdd
	TriggerDelete
	TriggerClear
)

// TargetKind tells Trigger what collection shape the target has, since
// arrays, maps, and plain objects propagate ADD/DELETE/SET differently
// (array length tracking vs. iteration-key tracking).
type TargetKind int

const (
	TargetPlain TargetKind = iota
	TargetArray
	TargetMapLike
	TargetSetLike
)

// Reserved keys recording collection-wide dependencies distinct from any
// single property key. Pointer identity of these two values is what
// makes them distinguishable from any real property key a caller might
// use, playing the role of the original design's symbol keys.
var (
	IterateKey       = &struct{ name string }{"ITERATE"}
	MapKeyIterateKey = &struct{ name string }{"MAP_KEY_ITERATE"}
)

// LengthKey is the conventional key a reactive array proxy uses to track
// and trigger its own length.
const LengthKey = "length"

// TriggerOptions carries everything Trigger needs beyond the bare
// (target, op, key) triple to decide which Deps a mutation touches.
type TriggerOptions struct {
	Key          any
	NewValue     any
	OldValue     any
	OldTarget    any
	TargetKind   TargetKind
	NewLength    int
	HasNewLength bool
}

// TrackEvent and TriggerEvent are delivered to an effect's onTrack /
// onTrigger debug taps.
type TrackEvent struct {
	Effect *ReactiveEffect
	Target any
	Type   TrackOpType
	Key    any
}

type TriggerEvent struct {
	Effect   *ReactiveEffect
	Target   any
	Type     TriggerOpType
	Key      any
	NewValue any
	OldValue any
}

// TargetMap is the two-level dependency graph: target identity to
// property key to Dep. The default, process-wide graph is DefaultGraph;
// most callers never need to construct their own, but an isolated graph
// is useful for tests that want a clean slate without resetting global
// state.
type TargetMap struct {
	mu      sync.Mutex
	targets map[any]map[any]*Dep
}

// NewTargetMap returns an empty dependency graph.
func NewTargetMap() *TargetMap {
	return &TargetMap{targets: make(map[any]map[any]*Dep)}
}

// DefaultGraph is the graph Track and Trigger operate on when called as
// package-level functions, matching the process-wide singleton the
// design notes describe.
var DefaultGraph = NewTargetMap()

func (tm *TargetMap) getOrCreateDep(target, key any) *Dep {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	keyMap, ok := tm.targets[target]
	if !ok {
		keyMap = make(map[any]*Dep)
		tm.targets[target] = keyMap
	}
	dep, ok := keyMap[key]
	if !ok {
		dep = newDep(func() {
			tm.mu.Lock()
			defer tm.mu.Unlock()
			delete(keyMap, key)
			if len(keyMap) == 0 {
				delete(tm.targets, target)
			}
		}, nil)
		keyMap[key] = dep
	}
	return dep
}

// Track records that activeEffect (if any, and if tracking is enabled)
// depends on target's key. It is the one place Dep edges are created.
func (tm *TargetMap) Track(target any, typ TrackOpType, key any) {
	if !shouldTrack || activeEffect == nil {
		return
	}
	dep := tm.getOrCreateDep(target, key)
	trackEffect(activeEffect, dep)
	if activeEffect.onTrack != nil {
		activeEffect.onTrack(TrackEvent{Effect: activeEffect, Target: target, Type: typ, Key: key})
	}
}

// Trigger collects every Dep a mutation touches and notifies their
// subscribers at DirtyLevel Dirty, pausing scheduling around the whole
// batch so all notifications from one mutation hand off to the
// scheduler atomically.
func (tm *TargetMap) Trigger(target any, typ TriggerOpType, o TriggerOptions) {
	tm.mu.Lock()
	keyMap, ok := tm.targets[target]
	if !ok {
		tm.mu.Unlock()
		return
	}

	var deps []*Dep
	switch {
	case typ == TriggerClear:
		for _, d := range keyMap {
			deps = append(deps, d)
		}
	case o.HasNewLength:
		if d, ok := keyMap[LengthKey]; ok {
			deps = append(deps, d)
		}
		for k, d := range keyMap {
			if ik, isInt := k.(int); isInt && ik >= o.NewLength {
				deps = append(deps, d)
			}
		}
	default:
		if o.Key != nil {
			if d, ok := keyMap[o.Key]; ok {
				deps = append(deps, d)
			}
		}
		switch typ {
		case TriggerAdd:
			if o.TargetKind == TargetArray {
				if d, ok := keyMap[LengthKey]; ok {
					deps = append(deps, d)
				}
			} else {
				if d, ok := keyMap[IterateKey]; ok {
					deps = append(deps, d)
				}
				if o.TargetKind == TargetMapLike {
					if d, ok := keyMap[MapKeyIterateKey]; ok {
						deps = append(deps, d)
					}
				}
			}
		case TriggerDelete:
			if o.TargetKind != TargetArray {
				if d, ok := keyMap[IterateKey]; ok {
					deps = append(deps, d)
				}
				if o.TargetKind == TargetMapLike {
					if d, ok := keyMap[MapKeyIterateKey]; ok {
						deps = append(deps, d)
					}
				}
			}
		case TriggerSet:
			if o.TargetKind == TargetMapLike {
				if d, ok := keyMap[IterateKey]; ok {
					deps = append(deps, d)
				}
			}
		}
	}
	tm.mu.Unlock()

	pauseSchedulingLocked()
	for _, d := range deps {
		triggerEffects(d, Dirty, target, typ, o)
	}
	resumeSchedulingLocked()
}

// GraphStats reports coarse size information about a TargetMap, useful
// for tests asserting the empty-Dep cleanup invariant without reaching
// into unexported fields.
type GraphStats struct {
	Targets int
	Deps    int
	Edges   int
}

// Stats walks the graph and summarizes it. It takes coreMu because Dep
// iteration is not otherwise safe to do concurrently with a trigger.
func (tm *TargetMap) Stats() GraphStats {
	coreMu.Lock()
	defer coreMu.Unlock()
	tm.mu.Lock()
	defer tm.mu.Unlock()
	var s GraphStats
	s.Targets = len(tm.targets)
	for _, keyMap := range tm.targets {
		for _, dep := range keyMap {
			s.Deps++
			s.Edges += dep.len()
		}
	}
	return s
}

// Track and Trigger against the process-wide default graph. Reactive
// proxy implementations call these two functions; everything else in
// this package is reached through them or through the ReactiveEffect /
// Computed / Watch constructors.
func Track(target any, typ TrackOpType, key any) {
	coreMu.Lock()
	defer coreMu.Unlock()
	assertSingleMutator()
	DefaultGraph.Track(target, typ, key)
}

func Trigger(target any, typ TriggerOpType, o TriggerOptions) {
	coreMu.Lock()
	defer coreMu.Unlock()
	assertSingleMutator()
	DefaultGraph.Trigger(target, typ, o)
}
