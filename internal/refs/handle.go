// Package refs implements the object-reference accounting layer (spec
// §3/§4.3): the handle table mapping driver handles to proxy entries, and
// the native table mapping local stable ids to native-binding entries, each
// with the local strong/weak bookkeeping that must stay in lockstep with
// the driver's own BR_INCREFS/BR_ACQUIRE/BR_RELEASE/BR_DECREFS stream.
//
// Locking follows go-ublk's fine-grained-over-coarse convention (per-tag
// mutexes in internal/queue, rather than one big device lock): each table
// guards its own map with its own mutex, matching spec §5's "protected by
// fine-grained locks per table."
package refs

import "sync"

// HandleEntry is one handle table row: the driver handle and its local
// strong/weak counters. Death-notification watchers are kept separately in
// DeathWatchers, keyed by cookie.
type HandleEntry struct {
	Handle uint32

	mu     sync.Mutex
	strong int32
	weak   int32

	descriptor string
}

// Strong returns the entry's current local strong-reference count.
func (e *HandleEntry) Strong() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strong
}

// Weak returns the entry's current local weak-reference count.
func (e *HandleEntry) Weak() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weak
}

// Descriptor returns the cached interface descriptor string, if any.
func (e *HandleEntry) Descriptor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.descriptor
}

// SetDescriptor caches the proxy's interface descriptor string.
func (e *HandleEntry) SetDescriptor(d string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.descriptor = d
}

// HandleTable maps driver handles to HandleEntry rows. Spec invariant: "The
// handle table never returns two distinct live proxies for the same driver
// handle" -- enforced by GetOrCreate always returning the same *HandleEntry
// for a given handle while it remains live.
type HandleTable struct {
	mu      sync.Mutex
	entries map[uint32]*HandleEntry
}

// NewHandleTable returns an empty handle table.
func NewHandleTable() *HandleTable {
	return &HandleTable{entries: make(map[uint32]*HandleEntry)}
}

// GetOrCreate returns the existing entry for handle, or installs and returns
// a fresh zero-refcount entry.
func (t *HandleTable) GetOrCreate(handle uint32) *HandleEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[handle]; ok {
		return e
	}
	e := &HandleEntry{Handle: handle}
	t.entries[handle] = e
	return e
}

// Get looks up handle without creating an entry.
func (t *HandleTable) Get(handle uint32) (*HandleEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[handle]
	return e, ok
}

// remove drops an entry once both its counters have reached zero.
func (t *HandleTable) remove(handle uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, handle)
}

// RefDelta reports which BC_* acknowledgements must be enqueued in response
// to a local refcount transition, honoring spec §4.3's ordering tie-break:
// "BC_ACQUIRE must precede BC_INCREFS ... BC_RELEASE must precede BC_DECREFS."
type RefDelta struct {
	SendAcquire bool
	SendIncRefs bool
	SendRelease bool
	SendDecRefs bool
	Collected   bool // both counters reached zero; entry has been removed
}

// IncStrong records a driver BR_ACQUIRE, incrementing the strong count and
// (since strong implies weak) the weak count on a 0->1 strong transition.
func (t *HandleTable) IncStrong(handle uint32) RefDelta {
	e := t.GetOrCreate(handle)
	e.mu.Lock()
	defer e.mu.Unlock()

	var d RefDelta
	if e.strong == 0 {
		d.SendAcquire = true
		if e.weak == 0 {
			d.SendIncRefs = true
		}
		e.weak++
	}
	e.strong++
	return d
}

// IncWeak records a driver BR_INCREFS.
func (t *HandleTable) IncWeak(handle uint32) RefDelta {
	e := t.GetOrCreate(handle)
	e.mu.Lock()
	defer e.mu.Unlock()

	var d RefDelta
	if e.weak == 0 {
		d.SendIncRefs = true
	}
	e.weak++
	return d
}

// DecStrong records a driver BR_RELEASE.
func (t *HandleTable) DecStrong(handle uint32) RefDelta {
	e, ok := t.Get(handle)
	if !ok {
		return RefDelta{}
	}
	e.mu.Lock()
	var d RefDelta
	if e.strong > 0 {
		e.strong--
		if e.strong == 0 {
			d.SendRelease = true
		}
	}
	collected := e.strong == 0 && e.weak == 0
	e.mu.Unlock()

	if collected {
		t.remove(handle)
		d.Collected = true
	}
	return d
}

// DecWeak records a driver BR_DECREFS.
func (t *HandleTable) DecWeak(handle uint32) RefDelta {
	e, ok := t.Get(handle)
	if !ok {
		return RefDelta{}
	}
	e.mu.Lock()
	var d RefDelta
	if e.weak > 0 {
		e.weak--
		if e.weak == 0 {
			d.SendDecRefs = true
		}
	}
	collected := e.strong == 0 && e.weak == 0
	e.mu.Unlock()

	if collected {
		t.remove(handle)
		d.Collected = true
	}
	return d
}
