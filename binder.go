// Package gobinder is a userspace client library for the Linux binder
// kernel driver: it marshals and unmarshals parcels, runs the per-thread
// binder protocol loop, and exposes proxies and native bindings over the
// driver's transaction mechanism.
package gobinder

import (
	"runtime"

	"github.com/ehrlich-b/gobinder/internal/binderthread"
	"github.com/ehrlich-b/gobinder/internal/dispatch"
	"github.com/ehrlich-b/gobinder/internal/logging"
	"github.com/ehrlich-b/gobinder/internal/process"
)

// IBinder is the capability every callable binder target shares, whether it
// is a remote Proxy or a local Native binding (spec.md §9: "polymorphism
// over anything callable as a binder" modeled as one small interface with
// two concrete implementers rather than a class hierarchy).
type IBinder interface {
	// Transact invokes code against the target, synchronously unless
	// oneWay is set, in which case a nil reply is returned as soon as the
	// driver acknowledges the send.
	Transact(code uint32, data *Parcel, oneWay bool) (*Parcel, error)

	// IsNative reports whether this binder is a local binding (true) or a
	// remote proxy (false).
	IsNative() bool
}

// Options configures process-wide initialization.
type Options struct {
	// DevicePath is the binder data-plane device. Empty uses
	// DefaultBinderPath.
	DevicePath string

	// MaxThreads bounds the pooled-thread count advertised to the driver.
	// Zero uses DefaultMaxThreads.
	MaxThreads int

	// MmapSize bounds the read-only delivery area. Zero uses
	// DefaultMmapSize.
	MmapSize int

	// Observer receives transaction and thread-pool-depth samples as this
	// process's binder activity happens. Nil installs a no-op observer; pass
	// NewMetricsObserver(NewMetrics()) to collect the built-in Metrics.
	Observer Observer
}

var registry = newNativeRegistry()

// Init performs the one-time per-process binder setup: opens the device,
// verifies the driver's protocol version, advertises the thread-pool
// ceiling, and maps the read-only delivery area (spec.md §4.5). It is the
// library's equivalent of the teacher's CreateAndServe entry point, adapted
// from "create and serve one block device" to "bring up this process's
// binder state."
func Init(opts Options) error {
	observer := opts.Observer
	if observer == nil {
		observer = NoOpObserver{}
	}
	_, err := process.Init(process.Config{
		DevicePath: opts.DevicePath,
		MaxThreads: opts.MaxThreads,
		MmapSize:   opts.MmapSize,
		Dispatch:   dispatch.NewTransactor(registry).Dispatch,
		Observer:   observer,
	})
	return err
}

// BecomeContextManager claims handle 0 for this process, making it the
// well-known context manager (service manager, in Android's usage) other
// processes on this binder domain reach via ContextObject (spec.md §4.5).
func BecomeContextManager() error {
	st, err := process.Current()
	if err != nil {
		return err
	}
	return st.BecomeContextManager()
}

// ContextObject returns a Proxy for handle 0, the well-known context
// manager (spec.md §4.5).
func ContextObject() (*Proxy, error) {
	if _, err := process.Current(); err != nil {
		return nil, err
	}
	return &Proxy{handle: 0}, nil
}

// StartThreadPool starts the process's configured complement of pooled
// looper threads, one goroutine each pinned to its own OS thread, mirroring
// how the teacher spins up one runner goroutine per I/O queue before
// declaring the device ready.
func StartThreadPool() error {
	st, err := process.Current()
	if err != nil {
		return err
	}
	for i := 0; i < st.MaxThreads(); i++ {
		go func() {
			if err := st.JoinThreadPool(); err != nil {
				// A pooled looper's exit error is reported via internal/logging;
				// nothing else is actionable at this call site.
				logging.Warn("pooled looper exited", "error", err)
			}
		}()
	}
	return nil
}

// JoinThreadPool converts the calling goroutine's OS thread into a pooled
// looper until the driver signals exit or the gateway closes (spec.md
// §4.4/§4.5). It pins the goroutine to its OS thread for the duration.
func JoinThreadPool() error {
	st, err := process.Current()
	if err != nil {
		return err
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return st.JoinThreadPool()
}

// callOnOwnThread runs fn with the calling goroutine pinned to its OS
// thread and a fresh, call-scoped ThreadState -- the Go-idiomatic stand-in
// for spec.md §3's "thread state... created on first driver interaction of
// the thread" for a one-shot client call that never joins the pool: rather
// than keyed thread-local storage (which Go does not offer), each
// synchronous call from a non-looper goroutine gets its own transient
// engine pinned for the call's lifetime (see DESIGN.md's open-question
// resolution for §9's thread-affinity note).
func callOnOwnThread(fn func(*binderthread.ThreadState) (*Parcel, error)) (*Parcel, error) {
	st, err := process.Current()
	if err != nil {
		return nil, err
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return fn(st.NewThread())
}
