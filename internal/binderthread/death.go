package binderthread

import (
	"github.com/ehrlich-b/gobinder/internal/refs"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// RequestDeathNotification registers recipient against handle and enqueues
// BC_REQUEST_DEATH_NOTIFICATION (spec §4.3): "user code can register a
// recipient against a proxy; the layer enqueues BC_REQUEST_DEATH_NOTIFICATION
// with a cookie." The returned cookie identifies the registration for a
// later ClearDeathNotification.
func (ts *ThreadState) RequestDeathNotification(handle uint32, recipient refs.DeathRecipient) (uint64, error) {
	cookie := ts.death.Register(handle, recipient)
	ts.writeOpHandleCookie(uapi.BC_REQUEST_DEATH_NOTIFICATION, handle, cookie)
	return cookie, ts.TalkWithDriver(false)
}

// ClearDeathNotification enqueues BC_CLEAR_DEATH_NOTIFICATION for a
// previously registered cookie; the watcher slot is only dropped once
// BR_CLEAR_DEATH_NOTIFICATION_DONE confirms it (spec §4.3).
func (ts *ThreadState) ClearDeathNotification(handle uint32, cookie uint64) error {
	ts.writeOpHandleCookie(uapi.BC_CLEAR_DEATH_NOTIFICATION, handle, cookie)
	return ts.TalkWithDriver(false)
}
