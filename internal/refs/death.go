package refs

import (
	"sync"
	"sync/atomic"
)

// DeathRecipient is invoked exactly once when the driver reports the
// corresponding proxy's remote process has died (spec §4.3).
type DeathRecipient func()

var nextDeathCookie uint64

// DeathWatchers registers and fires death-notification recipients keyed by
// the cookie sent with BC_REQUEST_DEATH_NOTIFICATION, the way HandleTable
// and NativeTable key their rows -- a dedicated small table rather than
// folding cookies into HandleEntry, since a proxy may (in principle) rotate
// recipients across its lifetime while a handle's refcounts do not.
type DeathWatchers struct {
	mu      sync.Mutex
	byCookie map[uint64]*watcher
}

type watcher struct {
	handle    uint32
	recipient DeathRecipient
	fired     sync.Once
}

// NewDeathWatchers returns an empty registry.
func NewDeathWatchers() *DeathWatchers {
	return &DeathWatchers{byCookie: make(map[uint64]*watcher)}
}

// Register assigns a fresh cookie to recipient for the given handle. The
// caller is responsible for enqueueing BC_REQUEST_DEATH_NOTIFICATION(handle, cookie).
func (d *DeathWatchers) Register(handle uint32, recipient DeathRecipient) uint64 {
	cookie := atomic.AddUint64(&nextDeathCookie, 1)
	d.mu.Lock()
	d.byCookie[cookie] = &watcher{handle: handle, recipient: recipient}
	d.mu.Unlock()
	return cookie
}

// Clear removes the watcher for cookie without firing it, used once
// BR_CLEAR_DEATH_NOTIFICATION_DONE confirms the driver has dropped it
// (spec §4.3).
func (d *DeathWatchers) Clear(cookie uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byCookie, cookie)
}

// Fire invokes the recipient registered for cookie exactly once, per spec
// §4.3: "the recipient is invoked exactly once." A cookie with no
// registered watcher (already cleared, or unknown) is a no-op.
func (d *DeathWatchers) Fire(cookie uint64) {
	d.mu.Lock()
	w, ok := d.byCookie[cookie]
	d.mu.Unlock()
	if !ok {
		return
	}
	w.fired.Do(w.recipient)
}
