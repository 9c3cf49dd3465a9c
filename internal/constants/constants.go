// Package constants holds tunables shared across gobinder's internal packages.
package constants

import "time"

const (
	// DefaultBinderPath is the data-plane binder device.
	DefaultBinderPath = "/dev/binderfs/binder"

	// DefaultBinderControlPath is the binderfs control device used to add new binder nodes.
	DefaultBinderControlPath = "/dev/binderfs/binder-control"

	// DefaultBinderFsPath is where binderfs is expected to be mounted.
	DefaultBinderFsPath = "/dev/binderfs"

	// DefaultMaxThreads is the thread-pool hint sent via BINDER_SET_MAX_THREADS.
	DefaultMaxThreads = 15

	// DefaultMmapSize is the size of the read-only mmap'd driver delivery area (128KB, well under the 4MiB ceiling).
	DefaultMmapSize = 128 * 1024

	// BinderCurrentProtocolVersion is the protocol version this library was built against.
	BinderCurrentProtocolVersion = 8
)

// Timing constants for binderfs provisioning races (mount propagation, udev
// node creation). Nothing in this module reads them: rsb-device checks
// /proc/mounts once and does not poll or wait.
const (
	// MountPollInterval is a re-check interval for /proc/mounts after a mount.
	MountPollInterval = 10 * time.Millisecond

	// MountPollTimeout is a bound on waiting for binderfs to appear mounted.
	MountPollTimeout = 2 * time.Second

	// DeviceNodePollInterval is a polling interval for a new device node.
	DeviceNodePollInterval = 10 * time.Millisecond

	// DeviceNodePollTimeout is a bound on waiting for a freshly added binder device node.
	DeviceNodePollTimeout = 2 * time.Second
)