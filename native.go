package gobinder

import (
	"sync"
	"time"

	"github.com/ehrlich-b/gobinder/internal/dispatch"
	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/process"
	"github.com/ehrlich-b/gobinder/internal/refs"
)

// OnTransactFunc answers one transaction code against a native binding: it
// reads arguments out of data and returns the reply payload (spec.md §4.6).
// Returning a *ServiceError encodes a service-specific exception reply;
// returning ErrUnknownTransaction (or an *Error with that code) for a code
// the binding does not recognize encodes the unknown-transaction exception.
type OnTransactFunc func(code uint32, data *Parcel) (*Parcel, error)

// Native is a local service object exposed to other processes across the
// binder domain (spec.md §3/§9's glossary: "Native binding: local object
// whose methods can be invoked by remote callers").
type Native struct {
	entry      *refs.NativeEntry
	stableID   uint64
	onTransact OnTransactFunc
}

// NewNative registers a fresh native binding backed by onTransact. The
// returned Native must be embedded in a flat object (see Parcel's object
// writers) to be handed to the driver before a remote process can reach it.
func NewNative(onTransact OnTransactFunc) (*Native, error) {
	st, err := process.Current()
	if err != nil {
		return nil, err
	}

	id := refs.NextStableID()
	entry := st.Natives().Register(id)

	n := &Native{entry: entry, stableID: id, onTransact: onTransact}
	registry.add(id, func(code uint32, data *Parcel) (*Parcel, error) {
		return onTransact(code, data)
	})
	return n, nil
}

// StableID returns the process-unique id this binding was registered under,
// the same value that belongs in a flat object's binder/cookie fields when
// handing this binding to the driver.
func (n *Native) StableID() uint64 {
	return n.stableID
}

// IsNative always reports true for a Native (spec.md §9's IBinder capability set).
func (n *Native) IsNative() bool {
	return true
}

// Transact invokes this binding's own handler directly, without going
// through the driver -- calling a Native you hold locally never leaves the
// process (spec.md §9: IBinder is polymorphic over anything callable as a
// binder, including a local target).
func (n *Native) Transact(code uint32, data *Parcel, oneWay bool) (*Parcel, error) {
	if data != nil {
		data.SetPosition(0)
	}
	start := time.Now()
	reply, err := n.onTransact(code, data)
	latencyNs := uint64(time.Since(start).Nanoseconds())
	if reply != nil {
		reply.SetPosition(0)
	}

	var dataBytes uint64
	if data != nil {
		dataBytes = uint64(data.Len())
	}
	if st, stErr := process.Current(); stErr == nil {
		st.Observer().ObserveDispatch(dataBytes, latencyNs, err == nil)
	}

	if oneWay {
		return nil, nil
	}
	return reply, err
}

var _ IBinder = (*Native)(nil)

// ObjectFromNative builds the flat-object descriptor that hands n to the
// driver as a local binder object, the form a transaction embeds n in to
// transfer it to a remote process (spec.md §4.1's ObjectLocalBinder arm).
func ObjectFromNative(n *Native) parcel.Object {
	return parcel.Object{
		Kind:   parcel.ObjectLocalBinder,
		Binder: n.stableID,
		Cookie: n.stableID,
	}
}

// nativeRegistry maps a native binding's stable id to its handler, and
// satisfies internal/dispatch.Registry so process.State's Dispatcher can
// route an inbound BR_TRANSACTION to the right binding without internal/
// dispatch needing to know about the root package's Native type (avoiding
// an import cycle).
type nativeRegistry struct {
	mu       sync.Mutex
	handlers map[uint64]dispatch.Handler
}

func newNativeRegistry() *nativeRegistry {
	return &nativeRegistry{handlers: make(map[uint64]dispatch.Handler)}
}

func (r *nativeRegistry) add(id uint64, h dispatch.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = h
}

// Lookup implements internal/dispatch.Registry.
func (r *nativeRegistry) Lookup(cookie uint64) (dispatch.Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[cookie]
	return h, ok
}
