package binderthread

import "runtime"

// JoinThreadPool converts the calling goroutine's OS thread into a looper:
// it registers with BC_ENTER_LOOPER, then repeatedly calls WaitForResponse
// to service inbound transactions until the driver signals exit or
// WaitForResponse returns a terminal error (spec §4.4/§4.5).
//
// The calling goroutine is pinned to its OS thread for the loop's duration,
// the way go-ublk pins queue-serving goroutines with runtime.LockOSThread
// so kernel-visible thread identity stays stable across the blocking ioctl
// calls.
func (ts *ThreadState) JoinThreadPool() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ts.EnsureLooperRegistered()

	for {
		_, err := ts.WaitForResponse(false)
		if err != nil {
			return err
		}
	}
}
