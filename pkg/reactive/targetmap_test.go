package reactive

import "testing"

func TestTrackNoopWithoutActiveEffect(t *testing.T) {
	resetGlobalState()
	tm := NewTargetMap()
	target := &struct{}{}

	tm.Track(target, TrackGet, "x")

	if stats := tm.Stats(); stats.Targets != 0 {
		t.Fatalf("tracking without an active effect should create nothing, got %+v", stats)
	}
}

func TestTriggerClearNotifiesEveryDep(t *testing.T) {
	resetGlobalState()
	tm := NewTargetMap()
	target := &struct{}{}

	var notified []string
	for _, key := range []string{"a", "b"} {
		key := key
		e := &ReactiveEffect{id: nextID(), active: true, notifyFn: func() { notified = append(notified, key) }}
		activeEffect = e
		tm.Track(target, TrackGet, key)
		activeEffect = nil
	}

	tm.Trigger(target, TriggerClear, TriggerOptions{})

	if len(notified) != 2 {
		t.Fatalf("expected both keys notified on CLEAR, got %v", notified)
	}
}

func TestTriggerArrayLengthShrinkCollectsTailIndices(t *testing.T) {
	resetGlobalState()
	tm := NewTargetMap()
	target := &struct{}{}

	var notifiedKeys []any
	track := func(key any) {
		e := &ReactiveEffect{id: nextID(), active: true, notifyFn: func() { notifiedKeys = append(notifiedKeys, key) }}
		activeEffect = e
		tm.Track(target, TrackGet, key)
		activeEffect = nil
	}
	track(0)
	track(1)
	track(2)
	track(LengthKey)

	tm.Trigger(target, TriggerSet, TriggerOptions{
		Key: LengthKey, TargetKind: TargetArray, NewLength: 1, HasNewLength: true,
	})

	if len(notifiedKeys) != 3 {
		t.Fatalf("expected length dep + indices >= newLength (1,2) notified, got %v", notifiedKeys)
	}
}

func TestTriggerAddOnMapNotifiesIterateAndMapKeyIterate(t *testing.T) {
	resetGlobalState()
	tm := NewTargetMap()
	target := &struct{}{}

	iterateHit, mapKeyHit := false, false
	e1 := &ReactiveEffect{id: nextID(), active: true, notifyFn: func() { iterateHit = true }}
	activeEffect = e1
	tm.Track(target, TrackIterate, IterateKey)
	activeEffect = nil

	e2 := &ReactiveEffect{id: nextID(), active: true, notifyFn: func() { mapKeyHit = true }}
	activeEffect = e2
	tm.Track(target, TrackIterate, MapKeyIterateKey)
	activeEffect = nil

	tm.Trigger(target, TriggerAdd, TriggerOptions{Key: "newkey", TargetKind: TargetMapLike})

	if !iterateHit || !mapKeyHit {
		t.Fatalf("expected both ITERATE and MAP_KEY_ITERATE notified, got iterate=%v mapKey=%v", iterateHit, mapKeyHit)
	}
}

func TestTriggerAddOnArrayDoesNotNotifyIterate(t *testing.T) {
	resetGlobalState()
	tm := NewTargetMap()
	target := &struct{}{}

	iterateHit := false
	e := &ReactiveEffect{id: nextID(), active: true, notifyFn: func() { iterateHit = true }}
	activeEffect = e
	tm.Track(target, TrackIterate, IterateKey)
	activeEffect = nil

	tm.Trigger(target, TriggerAdd, TriggerOptions{Key: 5, TargetKind: TargetArray})

	if iterateHit {
		t.Fatal("array ADD should notify length, not ITERATE")
	}
}
