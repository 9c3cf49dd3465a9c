// Package gateway wraps the binder character device's ioctl/mmap surface.
// It plays the role go-ublk's internal/ctrl and internal/uring packages
// play together: a typed command submission layer plus an interface that
// can be swapped for a test double, kept separate so callers never touch
// syscall.Syscall or unsafe.Pointer directly.
package gateway

// Gateway is the driver-facing surface a thread state or process state needs.
// A production binder device (unixGateway) and a MockGateway test double
// both implement it, mirroring go-ublk's uring.Ring / stub-ring split.
type Gateway interface {
	// Close releases the device fd and unmaps the read area, if mapped.
	Close() error

	// VerifyVersion queries BINDER_VERSION and compares it against the
	// library's compiled-in protocol version.
	VerifyVersion() (int32, error)

	// SetMaxThreads issues BINDER_SET_MAX_THREADS.
	SetMaxThreads(n uint32) error

	// SetContextManager issues BINDER_SET_CONTEXT_MGR_EXT (or BINDER_SET_CONTEXT_MGR
	// as a fallback) to claim handle 0 for this process.
	SetContextManager(stability uint32) error

	// MmapReadArea maps a read-only delivery area of the given size.
	MmapReadArea(size int) error

	// WriteRead issues the single multiplexed BINDER_WRITE_READ ioctl.
	// readBuf is sized by the caller; a zero-length readBuf requests a pure
	// flush (do_receive=false). Returns bytes consumed from each side.
	WriteRead(writeBuf []byte, readBuf []byte) (consumedWrite int, consumedRead int, err error)

	// AddBinderfsDevice issues BINDER_CTL_ADD against the binderfs control
	// device (the production gateway opens the default control path itself
	// for each call) and returns the assigned major/minor.
	AddBinderfsDevice(name string) (major, minor uint32, err error)
}

// Config configures a production gateway.
type Config struct {
	// DevicePath is the binder data-plane device, e.g. /dev/binderfs/binder.
	DevicePath string

	// MmapSize is the intended size of the read-only delivery area (<= 4MiB).
	// Open does not read it; the area is mapped by MmapReadArea with the size
	// passed there.
	MmapSize int
}
