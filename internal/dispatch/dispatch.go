// Package dispatch glues an inbound BR_TRANSACTION to a registered native
// binding's OnTransact, the dispatch surface named in spec §4.6. It is the
// Dispatcher a process.State hands every pooled binderthread.ThreadState.
package dispatch

import (
	"time"

	"github.com/ehrlich-b/gobinder/internal/binderthread"
	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/process"
	"github.com/ehrlich-b/gobinder/internal/status"
)

// Handler is what a native binding implements to answer a transaction: given
// a method code and the request parcel, produce a reply parcel or an error.
// A *status.ServiceError return encodes a service-specific exception; any
// other error encodes as a generic exception reply (spec §4.6).
type Handler func(code uint32, data *parcel.Parcel) (*parcel.Parcel, error)

// Registry looks up the Handler bound to a transaction's target cookie. The
// root package's Native type satisfies this with a cookie->Handler map kept
// alongside its refs.NativeTable entry; Transactor only needs the lookup,
// not the table's refcounting.
type Registry interface {
	Lookup(cookie uint64) (Handler, bool)
}

// Transactor adapts a Registry into a binderthread.Dispatcher.
type Transactor struct {
	registry Registry
}

// NewTransactor builds a Transactor over the given Registry.
func NewTransactor(registry Registry) *Transactor {
	return &Transactor{registry: registry}
}

// Dispatch implements binderthread.Dispatcher: it looks up the native
// binding targeted by the transaction's cookie, invokes its handler, and
// encodes the result as a reply parcel. A cookie with no registered handler,
// or a handler that doesn't recognize the code, yields the
// unknown-transaction exception reply (spec §9's resolved open question).
func (t *Transactor) Dispatch(tx binderthread.InboundTransaction) (*parcel.Parcel, error) {
	handler, ok := t.registry.Lookup(tx.Cookie)
	if !ok {
		if tx.IsOneWay() {
			return nil, nil
		}
		reply := parcel.New()
		status.WriteUnknownTransaction(reply, tx.Code)
		return reply, nil
	}

	start := time.Now()
	result, err := handler(tx.Code, tx.Data)
	latencyNs := uint64(time.Since(start).Nanoseconds())

	var dataBytes uint64
	if tx.Data != nil {
		dataBytes = uint64(tx.Data.Len())
	}
	if st, stErr := process.Current(); stErr == nil {
		st.Observer().ObserveDispatch(dataBytes, latencyNs, err == nil)
	}

	if tx.IsOneWay() {
		return nil, err
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
