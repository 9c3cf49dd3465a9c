package gateway

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/gobinder/internal/constants"
	"github.com/ehrlich-b/gobinder/internal/logging"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// unixGateway talks to the binder device directly via unix.Syscall-based
// ioctl(2) and mmap(2), the way go-ublk's internal/ctrl talks to
// /dev/ublk-control — except binder has no io_uring submission path, so
// there is no ring to stand up first.
type unixGateway struct {
	fd       int
	readArea []byte
	logger   *logging.Logger
}

// Open opens the binder data-plane device at cfg.DevicePath.
func Open(cfg Config) (Gateway, error) {
	path := cfg.DevicePath
	if path == "" {
		path = constants.DefaultBinderPath
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &unixGateway{fd: fd, logger: logging.Default()}, nil
}

func (g *unixGateway) Close() error {
	if g.readArea != nil {
		if err := unix.Munmap(g.readArea); err != nil {
			g.logger.Warn("munmap failed", "error", err)
		}
		g.readArea = nil
	}
	if g.fd < 0 {
		return nil
	}
	err := unix.Close(g.fd)
	g.fd = -1
	return err
}

func (g *unixGateway) ioctl(req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(g.fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (g *unixGateway) VerifyVersion() (int32, error) {
	v := uapi.BinderVersion{}
	if err := g.ioctl(uintptr(uapi.BINDER_VERSION), uintptr(unsafe.Pointer(&v))); err != nil {
		return 0, fmt.Errorf("BINDER_VERSION: %w", err)
	}
	g.logger.Debug("driver protocol version", "version", v.ProtocolVersion)
	return v.ProtocolVersion, nil
}

func (g *unixGateway) SetMaxThreads(n uint32) error {
	if err := g.ioctl(uintptr(uapi.BINDER_SET_MAX_THREADS), uintptr(unsafe.Pointer(&n))); err != nil {
		return fmt.Errorf("BINDER_SET_MAX_THREADS: %w", err)
	}
	return nil
}

func (g *unixGateway) SetContextManager(stability uint32) error {
	obj := uapi.FlatBinderObject{
		Flags: stability << uapi.FlatBinderFlagSchedPolicyShift,
	}
	if err := g.ioctl(uintptr(uapi.BINDER_SET_CONTEXT_MGR_EXT), uintptr(unsafe.Pointer(&obj))); err != nil {
		// Fall back to the legacy int-argument ioctl for older kernels.
		var zero int32
		if legacyErr := g.ioctl(uintptr(uapi.BINDER_SET_CONTEXT_MGR), uintptr(unsafe.Pointer(&zero))); legacyErr != nil {
			return fmt.Errorf("BINDER_SET_CONTEXT_MGR_EXT: %w (legacy fallback: %v)", err, legacyErr)
		}
	}
	return nil
}

func (g *unixGateway) MmapReadArea(size int) error {
	if size <= 0 {
		size = constants.DefaultMmapSize
	}
	data, err := unix.Mmap(g.fd, 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("mmap binder read area: %w", err)
	}
	g.readArea = data
	return nil
}

func (g *unixGateway) WriteRead(writeBuf []byte, readBuf []byte) (int, int, error) {
	bwr := uapi.BinderWriteRead{
		WriteSize: uint64(len(writeBuf)),
		ReadSize:  uint64(len(readBuf)),
	}
	if len(writeBuf) > 0 {
		bwr.WriteBuffer = uint64(uintptr(unsafe.Pointer(&writeBuf[0])))
	}
	if len(readBuf) > 0 {
		bwr.ReadBuffer = uint64(uintptr(unsafe.Pointer(&readBuf[0])))
	}

	if err := g.ioctl(uintptr(uapi.BINDER_WRITE_READ), uintptr(unsafe.Pointer(&bwr))); err != nil {
		return int(bwr.WriteConsumed), int(bwr.ReadConsumed), fmt.Errorf("BINDER_WRITE_READ: %w", err)
	}
	return int(bwr.WriteConsumed), int(bwr.ReadConsumed), nil
}

func (g *unixGateway) AddBinderfsDevice(name string) (uint32, uint32, error) {
	ctlFd, err := unix.Open(constants.DefaultBinderControlPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", constants.DefaultBinderControlPath, err)
	}
	defer unix.Close(ctlFd)

	dev := uapi.BinderfsDevice{}
	if len(name) >= len(dev.Name) {
		return 0, 0, fmt.Errorf("device name %q too long", name)
	}
	copy(dev.Name[:], name)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(ctlFd), uintptr(uapi.BINDER_CTL_ADD), uintptr(unsafe.Pointer(&dev)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("BINDER_CTL_ADD: %w", errno)
	}
	return dev.Major, dev.Minor, nil
}
