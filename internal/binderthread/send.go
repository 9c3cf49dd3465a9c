package binderthread

import (
	"unsafe"

	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/status"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// Call is an outgoing transaction's shape: the target (driver handle, or 0
// for the context manager), the method code, flags, and the request parcel.
type Call struct {
	Handle uint32
	Code   uint32
	OneWay bool
	Data   *parcel.Parcel
}

// Transact sends a transaction and, unless it is one-way, blocks until the
// reply arrives (spec §2/§4.4's full client call flow). A one-way call
// returns as soon as BR_TRANSACTION_COMPLETE is seen.
func (ts *ThreadState) Transact(call Call) (*parcel.Parcel, error) {
	flags := uint32(0)
	if call.OneWay {
		flags |= uapi.TransactionFlagOneWay
	}

	ts.enqueueTransaction(uapi.BC_TRANSACTION, transactionFields{
		Target: uint64(call.Handle),
		Code:   call.Code,
		Flags:  flags,
	}, call.Data)

	if err := ts.TalkWithDriver(!call.OneWay); err != nil {
		return nil, err
	}

	reply, err := ts.WaitForResponse(call.OneWay)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}

	if decodeErr := status.ReadReply(reply); decodeErr != nil {
		return nil, decodeErr
	}
	return reply, nil
}

// sendReplyFor builds and flushes a BC_REPLY for the transaction currently
// being dispatched, encoding err (nil for success) with the exception-reply
// convention (spec §4.6). The handler's own payload (if any) follows the
// status header unchanged; its object offsets are shifted by the header's
// width since they are absolute offsets into the final buffer.
func (ts *ThreadState) sendReplyFor(reply *parcel.Parcel, callErr error) error {
	out := reply
	if out == nil {
		out = parcel.New()
	}

	final := parcel.New()
	status.WriteReply(final, callErr)
	headerLen := final.Len()
	final.WriteRaw(out.Bytes())

	shifted := make([]int, len(out.Objects()))
	for i, off := range out.Objects() {
		shifted[i] = off + headerLen
	}
	final.WithObjects(shifted)

	ts.enqueueTransaction(uapi.BC_REPLY, transactionFields{}, final)
	return ts.TalkWithDriver(false)
}

// enqueueTransaction appends a BC_TRANSACTION/BC_REPLY command plus the
// underlying data/offsets buffers, keeping them alive until the next
// TalkWithDriver flush (see ThreadState.pendingBuffers).
func (ts *ThreadState) enqueueTransaction(op uintptr, f transactionFields, data *parcel.Parcel) {
	dataBytes := data.Bytes()
	objects := data.Objects()

	offsetsBytes := make([]byte, 8*len(objects))
	for i, o := range objects {
		parcel.HostOrder().PutUint64(offsetsBytes[i*8:i*8+8], uint64(o))
	}

	f.DataSize = uint64(len(dataBytes))
	f.OffsetsSize = uint64(len(offsetsBytes))
	if len(dataBytes) > 0 {
		f.DataBuffer = uint64(uintptr(unsafe.Pointer(&dataBytes[0])))
	}
	if len(offsetsBytes) > 0 {
		f.DataOffsets = uint64(uintptr(unsafe.Pointer(&offsetsBytes[0])))
	}

	ts.writeOpTransaction(op, f)

	ts.pendingBuffers = append(ts.pendingBuffers, dataBytes, offsetsBytes)
}

// ExitLooper enqueues BC_EXIT_LOOPER and flushes it, used when a pooled
// thread is told to shut down (spec §4.4).
func (ts *ThreadState) ExitLooper() error {
	ts.writeOpOnly(uapi.BC_EXIT_LOOPER)
	return ts.TalkWithDriver(false)
}
