package binderthread

import "github.com/ehrlich-b/gobinder/internal/uapi"

func (ts *ThreadState) writeOpOnly(op uintptr) {
	ts.out.WriteUint32(uint32(op))
}

func (ts *ThreadState) writeOpUint32(op uintptr, v uint32) {
	ts.out.WriteUint32(uint32(op))
	ts.out.WriteUint32(v)
}

func (ts *ThreadState) writeOpPtrCookie(op uintptr, ptr, cookie uint64) {
	ts.out.WriteUint32(uint32(op))
	ts.out.WriteUint64(ptr)
	ts.out.WriteUint64(cookie)
}

func (ts *ThreadState) writeOpHandleCookie(op uintptr, handle uint32, cookie uint64) {
	ts.out.WriteUint32(uint32(op))
	ts.out.WriteUint32(handle)
	ts.out.WriteUint32(0) // struct binder_handle_cookie padding
	ts.out.WriteUint64(cookie)
}

// writeOpNativeAck appends a binder_ptr_cookie-shaped command: the
// acknowledgements for a native binding's refcount transitions
// (BC_INCREFS/BC_ACQUIRE/BC_RELEASE/BC_DECREFS, addressed by the ptr/cookie
// pair the object was originally exported with) rather than a remote
// handle.
func (ts *ThreadState) writeOpNativeAck(op uintptr, ptr, cookie uint64) {
	ts.writeOpPtrCookie(op, ptr, cookie)
}

// transactionFields is the decoded, Go-native form of struct
// binder_transaction_data (spec §6): enough to both build a BC_TRANSACTION/
// BC_REPLY command and to decode one out of an incoming BR_TRANSACTION/
// BR_REPLY.
type transactionFields struct {
	Target      uint64
	Cookie      uint64
	Code        uint32
	Flags       uint32
	SenderPID   int32
	SenderEUID  uint32
	DataSize    uint64
	OffsetsSize uint64
	DataBuffer  uint64
	DataOffsets uint64
}

// writeOpTransaction appends a BC_TRANSACTION or BC_REPLY command: the
// opcode followed by the 64-byte binder_transaction_data layout, field by
// field in the kernel's exact order so the bytes land the same as an
// unsafe.Pointer cast of uapi.BinderTransactionData would.
func (ts *ThreadState) writeOpTransaction(op uintptr, f transactionFields) {
	ts.out.WriteUint32(uint32(op))
	ts.out.WriteUint64(f.Target)
	ts.out.WriteUint64(f.Cookie)
	ts.out.WriteUint32(f.Code)
	ts.out.WriteUint32(f.Flags)
	ts.out.WriteInt32(f.SenderPID)
	ts.out.WriteUint32(f.SenderEUID)
	ts.out.WriteUint64(f.DataSize)
	ts.out.WriteUint64(f.OffsetsSize)
	ts.out.WriteUint64(f.DataBuffer)
	ts.out.WriteUint64(f.DataOffsets)
}

// readTransactionFields decodes a binder_transaction_data payload (the part
// of a BR_TRANSACTION/BR_REPLY return that follows the 4-byte opcode) from
// ts.in at the current cursor.
func (ts *ThreadState) readTransactionFields() (transactionFields, error) {
	var f transactionFields
	var err error

	if f.Target, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	if f.Cookie, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	if f.Code, err = ts.in.ReadUint32(); err != nil {
		return f, err
	}
	if f.Flags, err = ts.in.ReadUint32(); err != nil {
		return f, err
	}
	if f.SenderPID, err = ts.in.ReadInt32(); err != nil {
		return f, err
	}
	if f.SenderEUID, err = ts.in.ReadUint32(); err != nil {
		return f, err
	}
	if f.DataSize, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	if f.OffsetsSize, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	if f.DataBuffer, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	if f.DataOffsets, err = ts.in.ReadUint64(); err != nil {
		return f, err
	}
	return f, nil
}

// readPtrCookie decodes a binder_ptr_cookie payload (BR_INCREFS,
// BR_ACQUIRE, BR_RELEASE, BR_DECREFS).
func (ts *ThreadState) readPtrCookie() (ptr, cookie uint64, err error) {
	if ptr, err = ts.in.ReadUint64(); err != nil {
		return 0, 0, err
	}
	if cookie, err = ts.in.ReadUint64(); err != nil {
		return 0, 0, err
	}
	return ptr, cookie, nil
}

var _ = uapi.BinderTransactionData{} // documents the layout writeOpTransaction mirrors
