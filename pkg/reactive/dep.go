package reactive

// depComputed is implemented by a Computed's internal bookkeeping so a
// Dep can refer back to the computed that owns it without the graph
// package needing a generic type parameter. It lets the dirty-resolution
// walk in a Computed's isDirty force a nested computed to refresh.
type depComputed interface {
	refreshForDirtyCheck() DirtyLevel
}

// Dep is the set of ReactiveEffects subscribed to one (target, key) pair.
// It preserves insertion order so iteration during a trigger is
// deterministic, and it tracks each subscriber's trackId snapshot from
// the run that recorded the edge, which is how trackEffect tells a
// current edge from a stale one without a second pass.
type Dep struct {
	id       uint64
	order    []*ReactiveEffect
	index    map[*ReactiveEffect]int
	trackIDs map[*ReactiveEffect]uint64
	cleanup  func()
	computed depComputed
}

// newDep returns an empty Dep. cleanup is invoked exactly once, the
// instant the Dep transitions from non-empty to empty — it is how a Dep
// removes its own slot from the owning key-map once nothing subscribes
// to it anymore. computed is non-nil only for the Dep representing a
// Computed's own value (the set of readers of that computed).
func newDep(cleanup func(), computed depComputed) *Dep {
	return &Dep{
		id:       nextID(),
		index:    make(map[*ReactiveEffect]int),
		trackIDs: make(map[*ReactiveEffect]uint64),
		cleanup:  cleanup,
		computed: computed,
	}
}

func (d *Dep) get(e *ReactiveEffect) (uint64, bool) {
	tid, ok := d.trackIDs[e]
	return tid, ok
}

func (d *Dep) set(e *ReactiveEffect, trackID uint64) {
	if _, exists := d.index[e]; !exists {
		d.index[e] = len(d.order)
		d.order = append(d.order, e)
	}
	d.trackIDs[e] = trackID
}

// delete removes e from the Dep. If the Dep becomes empty as a result,
// its cleanup runs synchronously and exactly once.
func (d *Dep) delete(e *ReactiveEffect) {
	i, ok := d.index[e]
	if !ok {
		return
	}
	copy(d.order[i:], d.order[i+1:])
	d.order = d.order[:len(d.order)-1]
	for j := i; j < len(d.order); j++ {
		d.index[d.order[j]] = j
	}
	delete(d.index, e)
	delete(d.trackIDs, e)
	if len(d.order) == 0 && d.cleanup != nil {
		d.cleanup()
	}
}

func (d *Dep) len() int {
	return len(d.order)
}

// effects returns a snapshot copy of the current subscribers, safe to
// range over even while the callback mutates the Dep (an effect
// disposing itself, or a scheduler job re-entering track/trigger).
func (d *Dep) effects() []*ReactiveEffect {
	out := make([]*ReactiveEffect, len(d.order))
	copy(out, d.order)
	return out
}
