package gobinder

import (
	"time"

	"github.com/ehrlich-b/gobinder/internal/binderthread"
	"github.com/ehrlich-b/gobinder/internal/process"
	"github.com/ehrlich-b/gobinder/internal/refs"
)

// Proxy is a local stand-in for a remote binder object, holding the driver
// handle the kernel uses to route transactions to it (spec.md §3/§9's
// glossary: "Proxy: local stand-in for a remote object; holds a handle").
type Proxy struct {
	handle uint32
}

// ProxyForHandle wraps a raw driver handle in a Proxy. Most callers get a
// Proxy back from ContextObject or from decoding a remote-handle flat
// object out of a Parcel instead of calling this directly.
func ProxyForHandle(handle uint32) *Proxy {
	return &Proxy{handle: handle}
}

// Handle returns the underlying driver handle.
func (p *Proxy) Handle() uint32 {
	return p.handle
}

// IsNative always reports false for a Proxy (spec.md §9's IBinder capability set).
func (p *Proxy) IsNative() bool {
	return false
}

// Transact sends a transaction to the remote object this proxy represents
// (spec.md §4.4). A synchronous call blocks for the reply; a one-way call
// returns as soon as the driver acknowledges the send.
func (p *Proxy) Transact(code uint32, data *Parcel, oneWay bool) (*Parcel, error) {
	if data == nil {
		data = NewParcel()
	}

	st, err := process.Current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := callOnOwnThread(func(ts *binderthread.ThreadState) (*Parcel, error) {
		return ts.Transact(binderthread.Call{
			Handle: p.handle,
			Code:   code,
			OneWay: oneWay,
			Data:   data,
		})
	})
	latencyNs := uint64(time.Since(start).Nanoseconds())

	if oneWay {
		st.Observer().ObserveOneWay(uint64(data.Len()), err == nil)
	} else {
		var replyBytes uint64
		if reply != nil {
			replyBytes = uint64(reply.Len())
		}
		st.Observer().ObserveTransact(replyBytes, latencyNs, err == nil)
	}

	return reply, err
}

// RequestDeathNotification registers recipient to be invoked exactly once
// if the process holding the other end of this proxy's handle dies (spec.md
// §4.3). The returned cookie can be passed to ClearDeathNotification.
func (p *Proxy) RequestDeathNotification(recipient refs.DeathRecipient) (uint64, error) {
	var cookie uint64
	_, err := callOnOwnThread(func(ts *binderthread.ThreadState) (*Parcel, error) {
		var innerErr error
		cookie, innerErr = ts.RequestDeathNotification(p.handle, recipient)
		return nil, innerErr
	})
	return cookie, err
}

// ClearDeathNotification cancels a previously registered death recipient.
func (p *Proxy) ClearDeathNotification(cookie uint64) error {
	_, err := callOnOwnThread(func(ts *binderthread.ThreadState) (*Parcel, error) {
		return nil, ts.ClearDeathNotification(p.handle, cookie)
	})
	return err
}

var _ IBinder = (*Proxy)(nil)
