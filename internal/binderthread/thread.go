// Package binderthread implements the per-thread binder protocol engine
// (spec §4.4): a thread-local outgoing command buffer and incoming return
// buffer, driven by a single talk_with_driver/wait_for_response cycle that
// also handles reentrant inbound calls on the same kernel thread.
//
// Each OS thread that talks to the driver owns exactly one ThreadState; the
// type is deliberately not safe for concurrent use by design (spec §9:
// "Per-thread state is inherently thread-local; implementations must not
// share it via global maps keyed by thread id").
package binderthread

import (
	"runtime"

	"github.com/ehrlich-b/gobinder/internal/errs"
	"github.com/ehrlich-b/gobinder/internal/gateway"
	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/refs"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// InboundTransaction is the decoded form of a BR_TRANSACTION return,
// handed to the Dispatcher callback (spec §4.6).
type InboundTransaction struct {
	Target     uint64
	Cookie     uint64
	Code       uint32
	Flags      uint32
	SenderPID  int32
	SenderEUID uint32
	Data       *parcel.Parcel
}

// IsOneWay reports whether the transaction expects no reply.
func (t InboundTransaction) IsOneWay() bool {
	return t.Flags&uapi.TransactionFlagOneWay != 0
}

// Dispatcher hands an inbound transaction to the caller's service-object
// lookup (the dispatch surface, spec §4.6) and gets back a reply parcel (nil
// for a one-way call). It must not block on write_read itself -- any nested
// outgoing calls it makes go through the same ThreadState, which is how
// reentrancy (spec §5) stays confined to one kernel thread.
type Dispatcher func(tx InboundTransaction) (reply *parcel.Parcel, err error)

// SpawnLooper is invoked when the driver signals BR_SPAWN_LOOPER, asking the
// process state to start another pooled thread (spec §4.5), subject to its
// own max-threads policy.
type SpawnLooper func()

// ThreadState is one OS thread's binder protocol state.
type ThreadState struct {
	gw gateway.Gateway

	handles *refs.HandleTable
	natives *refs.NativeTable
	death   *refs.DeathWatchers

	dispatch    Dispatcher
	spawnLooper SpawnLooper

	out *parcel.Parcel
	in  *parcel.Parcel

	// pendingBuffers keeps the raw data/offsets byte slices referenced by
	// in-flight BC_TRANSACTION/BC_REPLY commands alive until TalkWithDriver's
	// ioctl has returned -- the same runtime.KeepAlive discipline go-ublk's
	// internal/ctrl uses around its marshalled command buffers.
	pendingBuffers [][]byte

	registeredLooper bool
	callDepth        int32

	// lastReply/lastErr are not read or written anywhere in this package:
	// WaitForResponse returns the terminal outcome of the call it waits on
	// directly.
	lastReply *parcel.Parcel
	lastErr   error
}

// Deps bundles the process-wide collaborators a ThreadState needs; every
// thread in a process shares the same Deps values.
type Deps struct {
	Gateway     gateway.Gateway
	Handles     *refs.HandleTable
	Natives     *refs.NativeTable
	Death       *refs.DeathWatchers
	Dispatch    Dispatcher
	SpawnLooper SpawnLooper
}

// New creates a ThreadState for the calling goroutine's OS thread.
func New(d Deps) *ThreadState {
	return &ThreadState{
		gw:          d.Gateway,
		handles:     d.Handles,
		natives:     d.Natives,
		death:       d.Death,
		dispatch:    d.Dispatch,
		spawnLooper: d.SpawnLooper,
		out:         parcel.New(),
		in:          parcel.New(),
	}
}

// CallDepth returns how many nested inbound transactions are currently being
// serviced on this thread (0 if idle, 1 while the outermost call is being
// dispatched).
func (ts *ThreadState) CallDepth() int32 {
	return ts.callDepth
}

// TalkWithDriver issues write_read: flushes ts.out to the driver and, if
// doReceive is true, reads new returns into ts.in (spec §4.4). A false
// doReceive yields a pure flush with a zero-length read buffer, used for
// one-way calls that need no reply.
func (ts *ThreadState) TalkWithDriver(doReceive bool) error {
	writeBuf := ts.out.Bytes()

	var readBuf []byte
	if doReceive {
		readBuf = make([]byte, 8*1024)
	}

	consumedWrite, consumedRead, err := ts.gw.WriteRead(writeBuf, readBuf)
	runtimeKeepAliveAll(ts.pendingBuffers)
	ts.pendingBuffers = ts.pendingBuffers[:0]

	if err != nil {
		return errs.Wrap("binderthread.talkWithDriver", err)
	}

	if consumedWrite >= len(writeBuf) {
		ts.out.Reset()
	} else {
		ts.out = parcel.FromBytes(append([]byte(nil), writeBuf[consumedWrite:]...))
	}

	if consumedRead > 0 {
		ts.in = parcel.FromBytes(readBuf[:consumedRead])
	}

	return nil
}

func runtimeKeepAliveAll(bufs [][]byte) {
	for _, b := range bufs {
		runtime.KeepAlive(b)
	}
}

// EnsureLooperRegistered enqueues BC_ENTER_LOOPER the first time a thread
// joins the pool or starts polling (spec §4.4).
func (ts *ThreadState) EnsureLooperRegistered() {
	if ts.registeredLooper {
		return
	}
	ts.writeOpOnly(uapi.BC_ENTER_LOOPER)
	ts.registeredLooper = true
}
