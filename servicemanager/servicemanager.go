// Package servicemanager is the client side of the well-known context
// manager's wire contract: the first process on a binder domain to call
// gobinder.BecomeContextManager plays this role, and everyone else reaches
// it through Default (spec.md §1 calls out the service manager's own
// implementation as a collaborator outside this library's scope, but the
// client stub that talks to it is in scope).
package servicemanager

import (
	"sync"

	"github.com/ehrlich-b/gobinder"
)

// Transaction codes match AOSP's generated android.os.IServiceManager stub
// ordering (FIRST_CALL_TRANSACTION + method index): getService, checkService,
// addService, listServices in declaration order.
const (
	codeGetService   uint32 = 1
	codeAddService   uint32 = 3
	codeListServices uint32 = 4
)

// DumpFlagPriorityDefault is the flags value spec.md §4.5's listServices
// example transacts with when the caller has no particular dump-priority
// filter in mind.
const DumpFlagPriorityDefault uint32 = 1 << 4

var (
	once    sync.Once
	sm      *gobinder.Proxy
	initErr error
)

// Default returns the process-wide proxy for the context manager, opening it
// on first call via gobinder.ContextObject.
func Default() (*gobinder.Proxy, error) {
	once.Do(func() {
		sm, initErr = gobinder.ContextObject()
	})
	return sm, initErr
}

// GetService looks up name with the service manager, returning a Proxy for
// the registered binding or an error if no service by that name is
// registered.
func GetService(name string) (*gobinder.Proxy, error) {
	svcMgr, err := Default()
	if err != nil {
		return nil, err
	}

	req := gobinder.NewParcel()
	req.WriteString(name)

	reply, err := svcMgr.Transact(codeGetService, req, false)
	if err != nil {
		return nil, err
	}

	obj, err := reply.ReadObject()
	if err != nil {
		return nil, err
	}
	return gobinder.ProxyForHandle(obj.Handle), nil
}

// AddService registers svc under name with the service manager, making it
// reachable by other processes' GetService calls.
func AddService(name string, svc *gobinder.Native, flags uint32) error {
	svcMgr, err := Default()
	if err != nil {
		return err
	}

	req := gobinder.NewParcel()
	req.WriteString(name)
	if err := req.WriteObject(gobinder.ObjectFromNative(svc)); err != nil {
		return err
	}
	req.WriteUint32(flags)

	_, err = svcMgr.Transact(codeAddService, req, false)
	return err
}

// ListServices returns the names of every service currently registered,
// filtered by the given dump-priority flags (spec.md §4.5).
func ListServices(flags uint32) ([]string, error) {
	svcMgr, err := Default()
	if err != nil {
		return nil, err
	}

	req := gobinder.NewParcel()
	req.WriteUint32(flags)

	reply, err := svcMgr.Transact(codeListServices, req, false)
	if err != nil {
		return nil, err
	}

	names, _, err := reply.ReadStringSequence()
	return names, err
}
