package reactive

import "testing"

func TestWatchImmediateRunsBeforeAnyChange(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var calls int
	stop := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		calls++
	}, WithImmediate())
	defer stop()

	if calls != 1 {
		t.Fatalf("expected WithImmediate to invoke the callback once up front, got %d", calls)
	}
}

func TestWatchWithoutImmediateWaitsForFirstChange(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var calls int
	stop := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		calls++
	})
	defer stop()

	if calls != 0 {
		t.Fatalf("expected no callback before the first change, got %d calls", calls)
	}

	cell.Set(2)
	<-NextTick(nil)

	if calls != 1 {
		t.Fatalf("expected exactly one callback after the change, got %d", calls)
	}
}

func TestWatchReportsOldAndNewValues(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var gotNew, gotOld any
	stop := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		gotNew, gotOld = newVal, oldVal
	})
	defer stop()

	cell.Set(5)
	<-NextTick(nil)

	if gotNew != 5 || gotOld != 1 {
		t.Fatalf("expected new=5 old=1, got new=%v old=%v", gotNew, gotOld)
	}
}

func TestWatchOnceStopsAfterFirstCallback(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	calls := 0
	stop := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		calls++
	}, WithOnce())
	defer stop()

	cell.Set(2)
	<-NextTick(nil)
	cell.Set(3)
	<-NextTick(nil)

	if calls != 1 {
		t.Fatalf("expected WithOnce to stop after the first callback, got %d calls", calls)
	}
}

func TestWatchDeepTraversesNestedStruct(t *testing.T) {
	resetGlobalState()
	type inner struct{ N *reactiveCell }
	cell := &reactiveCell{val: 1}
	root := &inner{N: cell}

	calls := 0
	stop := Watch(func() any { return root }, func(newVal, oldVal any, onCleanup func(func())) {
		calls++
	}, WithDeep())
	defer stop()

	cell.Set(2)
	<-NextTick(nil)

	if calls != 1 {
		t.Fatalf("expected deep watch to react to a nested reactiveCell write, got %d calls", calls)
	}
}

func TestWatchCleanupRunsBeforeNextInvocation(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var cleanups int
	stop := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		onCleanup(func() { cleanups++ })
	})
	defer stop()

	cell.Set(2)
	<-NextTick(nil)
	if cleanups != 0 {
		t.Fatalf("cleanup should not fire after only one invocation, got %d", cleanups)
	}

	cell.Set(3)
	<-NextTick(nil)
	if cleanups != 1 {
		t.Fatalf("expected the first callback's cleanup to run before the second, got %d", cleanups)
	}
}

func TestWatchSyncEffectRunsInlineWithNoSchedulerHop(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var observed int
	stop := WatchSyncEffect(func(onCleanup func(func())) {
		observed = cell.Get().(int)
	})
	defer stop()

	cell.Set(9)
	if observed != 9 {
		t.Fatalf("expected sync flush to update observed before NextTick, got %d", observed)
	}
}

func TestPreWatcherRunsBeforeDownstreamRenderEffect(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}
	var order []string

	stopWatch := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		order = append(order, "watch")
	}, WithFlush(FlushPre))
	defer stopWatch()

	r := CreateEffect(func() {
		_ = cell.Get()
		order = append(order, "render")
	})
	defer Stop(r)
	order = nil

	cell.Set(2)
	<-NextTick(nil)

	if len(order) != 2 || order[0] != "watch" || order[1] != "render" {
		t.Fatalf("expected pre-watch before render, got %v", order)
	}
}

func TestPostWatcherRunsAfterDownstreamRenderEffect(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}
	var order []string

	stopWatch := Watch(func() any { return cell.Get() }, func(newVal, oldVal any, onCleanup func(func())) {
		order = append(order, "watch")
	}, WithFlush(FlushPost))
	defer stopWatch()

	r := CreateEffect(func() {
		_ = cell.Get()
		order = append(order, "render")
	})
	defer Stop(r)
	order = nil

	cell.Set(2)
	<-NextTick(nil)

	if len(order) != 2 || order[0] != "render" || order[1] != "watch" {
		t.Fatalf("expected render before post-flush watch, got %v", order)
	}
}

func TestWatchEffectReactsLikeAPlainEffect(t *testing.T) {
	resetGlobalState()
	cell := &reactiveCell{val: 1}

	var observed int
	stop := WatchEffect(func(onCleanup func(func())) {
		observed = cell.Get().(int)
	})
	defer stop()

	if observed != 1 {
		t.Fatalf("expected WatchEffect to run immediately, got %d", observed)
	}

	cell.Set(7)
	<-NextTick(nil)

	if observed != 7 {
		t.Fatalf("expected WatchEffect to rerun after the change, got %d", observed)
	}
}
