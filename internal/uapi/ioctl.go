package uapi

import (
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// Binder device ioctls (struct binder_write_read, struct binder_version, ...).
// These are genuine ioctl(2) request numbers, built with the same _IOC
// direction/type/number/size encoding the kernel header uses.
var (
	BINDER_WRITE_READ = ioctl.IOWR('b', 1, unsafe.Sizeof(BinderWriteRead{}))
	BINDER_SET_MAX_THREADS = ioctl.IOW('b', 5, unsafe.Sizeof(uint32(0)))
	BINDER_SET_CONTEXT_MGR = ioctl.IOW('b', 7, unsafe.Sizeof(int32(0)))
	BINDER_THREAD_EXIT     = ioctl.IOW('b', 8, unsafe.Sizeof(int32(0)))
	BINDER_VERSION         = ioctl.IOWR('b', 9, unsafe.Sizeof(BinderVersion{}))
	BINDER_SET_CONTEXT_MGR_EXT = ioctl.IOW('b', 13, unsafe.Sizeof(FlatBinderObject{}))

	// BINDER_CTL_ADD is issued against /dev/binderfs/binder-control, not the data-plane device.
	BINDER_CTL_ADD = ioctl.IOWR('b', 1, unsafe.Sizeof(BinderfsDevice{}))
)

// BC_* and BR_* are not ioctl request numbers — they are 4-byte opcodes
// embedded directly in the write/read command streams exchanged via
// BINDER_WRITE_READ. The kernel header still defines them with the _IOW/_IO
// macros (so the encoded size travels with the opcode for debugging), which
// is why they are built the same way as the ioctl numbers above.
var (
	BC_TRANSACTION    = ioctl.IOW('c', 0, unsafe.Sizeof(BinderTransactionData{}))
	BC_REPLY          = ioctl.IOW('c', 1, unsafe.Sizeof(BinderTransactionData{}))
	BC_ACQUIRE_RESULT = ioctl.IOW('c', 2, unsafe.Sizeof(int32(0)))
	BC_FREE_BUFFER    = ioctl.IOW('c', 3, unsafe.Sizeof(uint64(0)))
	BC_INCREFS        = ioctl.IOW('c', 4, unsafe.Sizeof(uint32(0)))
	BC_ACQUIRE        = ioctl.IOW('c', 5, unsafe.Sizeof(uint32(0)))
	BC_RELEASE        = ioctl.IOW('c', 6, unsafe.Sizeof(uint32(0)))
	BC_DECREFS        = ioctl.IOW('c', 7, unsafe.Sizeof(uint32(0)))
	BC_INCREFS_DONE   = ioctl.IOW('c', 8, unsafe.Sizeof(BinderPtrCookie{}))
	BC_ACQUIRE_DONE   = ioctl.IOW('c', 9, unsafe.Sizeof(BinderPtrCookie{}))
	BC_REGISTER_LOOPER = ioctl.IO('c', 11)
	BC_ENTER_LOOPER    = ioctl.IO('c', 12)
	BC_EXIT_LOOPER     = ioctl.IO('c', 13)
	BC_REQUEST_DEATH_NOTIFICATION = ioctl.IOW('c', 14, unsafe.Sizeof(BinderHandleCookie{}))
	BC_CLEAR_DEATH_NOTIFICATION   = ioctl.IOW('c', 15, unsafe.Sizeof(BinderHandleCookie{}))
	BC_DEAD_BINDER_DONE           = ioctl.IOW('c', 16, unsafe.Sizeof(uint64(0)))

	BR_ERROR                = ioctl.IOR('r', 0, unsafe.Sizeof(int32(0)))
	BR_OK                    = ioctl.IO('r', 1)
	BR_TRANSACTION           = ioctl.IOR('r', 2, unsafe.Sizeof(BinderTransactionData{}))
	BR_REPLY                 = ioctl.IOR('r', 3, unsafe.Sizeof(BinderTransactionData{}))
	BR_ACQUIRE_RESULT        = ioctl.IOR('r', 4, unsafe.Sizeof(int32(0)))
	BR_DEAD_REPLY            = ioctl.IO('r', 5)
	BR_TRANSACTION_COMPLETE  = ioctl.IO('r', 6)
	BR_INCREFS               = ioctl.IOR('r', 7, unsafe.Sizeof(BinderPtrCookie{}))
	BR_ACQUIRE               = ioctl.IOR('r', 8, unsafe.Sizeof(BinderPtrCookie{}))
	BR_RELEASE               = ioctl.IOR('r', 9, unsafe.Sizeof(BinderPtrCookie{}))
	BR_DECREFS               = ioctl.IOR('r', 10, unsafe.Sizeof(BinderPtrCookie{}))
	BR_NOOP                  = ioctl.IO('r', 12)
	BR_SPAWN_LOOPER          = ioctl.IO('r', 13)
	BR_FINISHED              = ioctl.IO('r', 14)
	BR_DEAD_BINDER           = ioctl.IOR('r', 15, unsafe.Sizeof(uint64(0)))
	BR_CLEAR_DEATH_NOTIFICATION_DONE = ioctl.IOR('r', 16, unsafe.Sizeof(uint64(0)))
	BR_FAILED_REPLY          = ioctl.IO('r', 17)
)
