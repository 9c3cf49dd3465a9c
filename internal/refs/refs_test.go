package refs

import "testing"

func TestHandleTableGetOrCreateReturnsSameEntry(t *testing.T) {
	tbl := NewHandleTable()
	a := tbl.GetOrCreate(5)
	b := tbl.GetOrCreate(5)
	if a != b {
		t.Fatal("GetOrCreate should return the same entry for a live handle")
	}
}

func TestHandleTableAcquireBeforeIncrefsOrdering(t *testing.T) {
	tbl := NewHandleTable()
	d := tbl.IncStrong(5)
	if !d.SendAcquire || !d.SendIncRefs {
		t.Fatalf("first IncStrong should request both BC_ACQUIRE and BC_INCREFS, got %+v", d)
	}

	d2 := tbl.IncStrong(5)
	if d2.SendAcquire || d2.SendIncRefs {
		t.Fatalf("second IncStrong should not re-request acks, got %+v", d2)
	}
}

func TestHandleTableReleaseBeforeDecrefsOrdering(t *testing.T) {
	tbl := NewHandleTable()
	tbl.IncStrong(5)

	d := tbl.DecStrong(5)
	if !d.SendRelease {
		t.Fatalf("dropping the last strong ref should request BC_RELEASE, got %+v", d)
	}
	if d.Collected {
		t.Fatal("entry should still be live: one weak ref remains")
	}

	d2 := tbl.DecWeak(5)
	if !d2.SendDecRefs || !d2.Collected {
		t.Fatalf("dropping the last weak ref should request BC_DECREFS and collect the entry, got %+v", d2)
	}

	if _, ok := tbl.Get(5); ok {
		t.Fatal("collected entry should no longer be retrievable")
	}
}

func TestHandleTableIncWeakOnly(t *testing.T) {
	tbl := NewHandleTable()
	d := tbl.IncWeak(9)
	if !d.SendIncRefs || d.SendAcquire {
		t.Fatalf("weak-only increment should request BC_INCREFS but not BC_ACQUIRE, got %+v", d)
	}
}

func TestNativeTableLifecycle(t *testing.T) {
	tbl := NewNativeTable()
	id := NextStableID()
	tbl.Register(id)

	d := tbl.IncStrong(id)
	if !d.SendAcquire || !d.SendIncRefs {
		t.Fatalf("expected acquire+increfs acks, got %+v", d)
	}

	d = tbl.DecStrong(id)
	if !d.SendRelease || d.Collected {
		t.Fatalf("expected release ack without collection (weak ref remains), got %+v", d)
	}

	d = tbl.DecWeak(id)
	if !d.SendDecRefs || !d.Collected {
		t.Fatalf("expected decrefs ack and collection, got %+v", d)
	}
}

func TestNextStableIDIsUniqueAndMonotonic(t *testing.T) {
	a := NextStableID()
	b := NextStableID()
	if b <= a {
		t.Fatalf("expected monotonically increasing ids, got %d then %d", a, b)
	}
}

func TestDeathWatchersFireExactlyOnce(t *testing.T) {
	dw := NewDeathWatchers()
	calls := 0
	cookie := dw.Register(3, func() { calls++ })

	dw.Fire(cookie)
	dw.Fire(cookie)

	if calls != 1 {
		t.Fatalf("expected recipient to fire exactly once, fired %d times", calls)
	}
}

func TestDeathWatchersClearPreventsFire(t *testing.T) {
	dw := NewDeathWatchers()
	calls := 0
	cookie := dw.Register(3, func() { calls++ })
	dw.Clear(cookie)
	dw.Fire(cookie)

	if calls != 0 {
		t.Fatal("cleared watcher should not fire")
	}
}

func TestDeathWatchersUnknownCookieIsNoOp(t *testing.T) {
	dw := NewDeathWatchers()
	dw.Fire(12345) // should not panic
}
