package binderthread

import (
	"github.com/ehrlich-b/gobinder/internal/errs"
	"github.com/ehrlich-b/gobinder/internal/logging"
	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/refs"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// WaitForResponse drains ts.in command by command (spec §4.4), applying
// refcount and death-notification side effects, dispatching any nested
// BR_TRANSACTION synchronously on this thread (reentrancy), and returning
// once a terminal return (BR_REPLY / BR_DEAD_REPLY / BR_FAILED_REPLY, or
// BR_TRANSACTION_COMPLETE for a one-way send) is seen.
//
// isOneWaySend tells WaitForResponse that the call it is waiting on was
// itself one-way, so BR_TRANSACTION_COMPLETE alone is terminal (spec §4.4).
func (ts *ThreadState) WaitForResponse(isOneWaySend bool) (*parcel.Parcel, error) {
	for {
		if !ts.in.HasMoreData() {
			if err := ts.TalkWithDriver(true); err != nil {
				return nil, err
			}
			if !ts.in.HasMoreData() {
				continue
			}
		}

		op, err := ts.in.ReadUint32()
		if err != nil {
			return nil, errs.Wrap("binderthread.waitForResponse", err)
		}

		switch uintptr(op) {
		case uapi.BR_TRANSACTION_COMPLETE:
			if isOneWaySend {
				return nil, nil
			}
			// Acknowledges our own outgoing send; keep draining for the reply.

		case uapi.BR_REPLY:
			f, err := ts.readTransactionFields()
			if err != nil {
				return nil, err
			}
			return ts.decodeTransactionParcel(f), nil

		case uapi.BR_DEAD_REPLY:
			return nil, errs.New("binderthread.waitForResponse", errs.DeadObject, "remote process is dead")

		case uapi.BR_FAILED_REPLY:
			return nil, errs.New("binderthread.waitForResponse", errs.FailedTransaction, "transaction failed")

		case uapi.BR_TRANSACTION:
			f, err := ts.readTransactionFields()
			if err != nil {
				return nil, err
			}
			if err := ts.dispatchInbound(f); err != nil {
				return nil, err
			}

		case uapi.BR_ACQUIRE:
			ptr, cookie, err := ts.readPtrCookie()
			if err != nil {
				return nil, err
			}
			ts.applyNativeDelta(ptr, cookie, ts.natives.IncStrong(cookie))

		case uapi.BR_INCREFS:
			ptr, cookie, err := ts.readPtrCookie()
			if err != nil {
				return nil, err
			}
			ts.applyNativeDelta(ptr, cookie, ts.natives.IncWeak(cookie))

		case uapi.BR_RELEASE:
			ptr, cookie, err := ts.readPtrCookie()
			if err != nil {
				return nil, err
			}
			ts.applyNativeDelta(ptr, cookie, ts.natives.DecStrong(cookie))

		case uapi.BR_DECREFS:
			ptr, cookie, err := ts.readPtrCookie()
			if err != nil {
				return nil, err
			}
			ts.applyNativeDelta(ptr, cookie, ts.natives.DecWeak(cookie))

		case uapi.BR_SPAWN_LOOPER:
			if ts.spawnLooper != nil {
				ts.spawnLooper()
			}

		case uapi.BR_DEAD_BINDER:
			cookie, err := ts.in.ReadUint64()
			if err != nil {
				return nil, err
			}
			ts.death.Fire(cookie)
			// The kernel expects an acknowledging BC_DEAD_BINDER_DONE.
			ts.out.WriteUint32(uint32(uapi.BC_DEAD_BINDER_DONE))
			ts.out.WriteUint64(cookie)

		case uapi.BR_CLEAR_DEATH_NOTIFICATION_DONE:
			cookie, err := ts.in.ReadUint64()
			if err != nil {
				return nil, err
			}
			ts.death.Clear(cookie)

		case uapi.BR_NOOP, uapi.BR_OK, uapi.BR_FINISHED:
			// Nothing to do.

		case uapi.BR_ERROR:
			code, err := ts.in.ReadInt32()
			if err != nil {
				return nil, err
			}
			return nil, errs.Newf("binderthread.waitForResponse", errs.Unknown, "driver BR_ERROR(%d)", code)

		default:
			return nil, errs.Newf("binderthread.waitForResponse", errs.Unknown, "unrecognized return opcode 0x%x", op)
		}
	}
}

// decodeTransactionParcel builds a read-only Parcel view over a transaction
// payload delivered by the driver, pointing directly at the mmap'd/returned
// memory rather than copying it.
func (ts *ThreadState) decodeTransactionParcel(f transactionFields) *parcel.Parcel {
	data := bytesFromAddr(f.DataBuffer, int(f.DataSize))
	rawOffsets := uint64sFromAddr(f.DataOffsets, int(f.OffsetsSize/8))

	offsets := make([]int, len(rawOffsets))
	for i, o := range rawOffsets {
		offsets[i] = int(o)
	}

	p := parcel.FromBytes(data).WithObjects(offsets)
	if f.Flags&uapi.TransactionFlagAcceptFds == 0 {
		p.SetNoFds()
	}
	return p
}

// applyNativeDelta enqueues whichever BC_* acknowledgements refs.RefDelta
// requested for a native binding's refcount transition, honoring the
// acquire-before-increfs / release-before-decrefs ordering tie-break (spec
// §4.3). ptr/cookie identify the binding the same way the original
// flat_binder_object exported it.
func (ts *ThreadState) applyNativeDelta(ptr, cookie uint64, d refs.RefDelta) {
	if d.SendAcquire {
		ts.writeOpNativeAck(uapi.BC_ACQUIRE, ptr, cookie)
	}
	if d.SendIncRefs {
		ts.writeOpNativeAck(uapi.BC_INCREFS, ptr, cookie)
	}
	if d.SendRelease {
		ts.writeOpNativeAck(uapi.BC_RELEASE, ptr, cookie)
	}
	if d.SendDecRefs {
		ts.writeOpNativeAck(uapi.BC_DECREFS, ptr, cookie)
	}
}

func (ts *ThreadState) dispatchInbound(f transactionFields) error {
	ts.callDepth++
	defer func() { ts.callDepth-- }()

	data := ts.decodeTransactionParcel(f)
	tx := InboundTransaction{
		Target:     f.Target,
		Cookie:     f.Cookie,
		Code:       f.Code,
		Flags:      f.Flags,
		SenderPID:  f.SenderPID,
		SenderEUID: f.SenderEUID,
		Data:       data,
	}

	if ts.dispatch == nil {
		return errs.New("binderthread.dispatchInbound", errs.UnknownTransaction, "no dispatcher registered")
	}

	reply, err := ts.dispatch(tx)

	if tx.IsOneWay() {
		if err != nil {
			logging.Warn("one-way transaction handler error", "code", tx.Code, "error", err)
		}
		return nil
	}

	return ts.sendReplyFor(reply, err)
}
