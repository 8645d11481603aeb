package reactive

import "testing"

func TestDepSetGetDedupsSameTrackID(t *testing.T) {
	d := newDep(func() {}, nil)
	e := &ReactiveEffect{id: nextID(), active: true, trackID: 1}

	d.set(e, 1)
	d.set(e, 1)

	if d.len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", d.len())
	}
}

func TestDepDeleteRunsCleanupOnlyWhenEmpty(t *testing.T) {
	cleanups := 0
	d := newDep(func() { cleanups++ }, nil)
	e1 := &ReactiveEffect{id: nextID(), active: true}
	e2 := &ReactiveEffect{id: nextID(), active: true}

	d.set(e1, 1)
	d.set(e2, 1)

	d.delete(e1)
	if cleanups != 0 {
		t.Fatalf("cleanup should not fire while a subscriber remains, got %d calls", cleanups)
	}

	d.delete(e2)
	if cleanups != 1 {
		t.Fatalf("cleanup should fire exactly once on the last removal, got %d calls", cleanups)
	}

	// deleting an already-absent effect must not re-fire cleanup
	d.delete(e2)
	if cleanups != 1 {
		t.Fatalf("cleanup fired again on redundant delete: %d calls", cleanups)
	}
}

func TestDepEffectsReturnsSnapshot(t *testing.T) {
	d := newDep(func() {}, nil)
	e1 := &ReactiveEffect{id: nextID(), active: true}
	d.set(e1, 1)

	snapshot := d.effects()
	e2 := &ReactiveEffect{id: nextID(), active: true}
	d.set(e2, 1)

	if len(snapshot) != 1 {
		t.Fatalf("snapshot should not observe mutations made after it was taken, got %d entries", len(snapshot))
	}
}
