package reactive

import "testing"

// reactiveCell is a minimal stand-in for what an external reactive proxy
// looks like from this package's point of view: a value plus Track/
// Trigger calls around reads and writes against the default graph.
type reactiveCell struct {
	val any
}

func (c *reactiveCell) Get() any {
	Track(c, TrackGet, "value")
	return c.val
}

func (c *reactiveCell) Set(v any) {
	old := c.val
	c.val = v
	Trigger(c, TriggerSet, TriggerOptions{Key: "value", NewValue: v, OldValue: old})
}

func TestTrackEffectDedupsRepeatedReads(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	runs := 0
	r := CreateEffect(func() {
		runs++
		_ = cell.Get()
		_ = cell.Get()
		_ = cell.Get()
	})
	defer Stop(r)

	dep := DefaultGraph.getOrCreateDep(cell, "value")
	if dep.len() != 1 {
		t.Fatalf("expected exactly one subscriber after repeated reads, got %d", dep.len())
	}
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
}

func TestNoStaleEdgesAfterConditionalAccess(t *testing.T) {
	resetGlobalState()
	flag := &reactiveCell{val: true}
	a := &reactiveCell{val: 1}
	b := &reactiveCell{val: 2}

	var last any
	r := CreateEffect(func() {
		if flag.Get().(bool) {
			last = a.Get()
		} else {
			last = b.Get()
		}
	})
	defer Stop(r)

	aDep := DefaultGraph.getOrCreateDep(a, "value")
	bDep := DefaultGraph.getOrCreateDep(b, "value")
	if aDep.len() != 1 || bDep.len() != 0 {
		t.Fatalf("expected a subscribed and b not, got a=%d b=%d", aDep.len(), bDep.len())
	}

	flag.Set(false)
	<-NextTick(nil)

	if aDep.len() != 0 || bDep.len() != 1 {
		t.Fatalf("expected b subscribed and a dropped after switch, got a=%d b=%d", aDep.len(), bDep.len())
	}
	if last != 2 {
		t.Fatalf("expected last=2, got %v", last)
	}

	a.Set(100)
	<-NextTick(nil)
	if last != 2 {
		t.Fatalf("changing a should not affect an effect no longer reading it, got %v", last)
	}

	b.Set(20)
	<-NextTick(nil)
	if last != 20 {
		t.Fatalf("expected last=20, got %v", last)
	}
}

func TestEmptyDepRemovedFromGraph(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	r := CreateEffect(func() { _ = cell.Get() })
	if stats := DefaultGraph.Stats(); stats.Deps != 1 {
		t.Fatalf("expected 1 dep after subscribing, got %d", stats.Deps)
	}

	Stop(r)
	if stats := DefaultGraph.Stats(); stats.Targets != 0 || stats.Deps != 0 {
		t.Fatalf("expected graph empty after stop, got %+v", stats)
	}
}

func TestEffectStopPreventsFurtherRuns(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}
	runs := 0
	r := CreateEffect(func() {
		runs++
		_ = cell.Get()
	})
	Stop(r)

	cell.Set(2)
	<-NextTick(nil)

	if runs != 1 {
		t.Fatalf("stopped effect should not rerun, got %d runs", runs)
	}
}

func TestEffectOnStopCalledOnce(t *testing.T) {
	resetGlobalState()
	calls := 0
	r := CreateEffect(func() {}, OnStop(func() { calls++ }))
	Stop(r)
	Stop(r)
	if calls != 1 {
		t.Fatalf("OnStop should fire exactly once, got %d", calls)
	}
}

func TestEffectDedupsMultipleWritesInOneTick(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 0}
	runs := 0
	r := CreateEffect(func() {
		runs++
		_ = cell.Get()
	})
	defer Stop(r)

	cell.Set(1)
	cell.Set(2)
	cell.Set(3)
	<-NextTick(nil)

	if runs != 2 {
		t.Fatalf("expected 2 total runs (initial + one deduped flush), got %d", runs)
	}
}

func TestLazyEffectDoesNotRunUntilTriggered(t *testing.T) {
	resetGlobalState()
	ran := false
	r := CreateEffect(func() { ran = true }, Lazy())
	if ran {
		t.Fatal("lazy effect should not run on creation")
	}
	r.Run()
	if !ran {
		t.Fatal("expected the manual Run() to execute fn")
	}
}
