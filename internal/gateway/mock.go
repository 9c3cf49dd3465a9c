package gateway

import (
	"fmt"
	"sync"
)

// MockGateway is an in-process Gateway double, mirroring go-ublk's stub
// ring: tests enqueue driver replies and record what a thread state wrote,
// without ever touching /dev/binderfs.
type MockGateway struct {
	mu sync.Mutex

	version       int32
	maxThreads    uint32
	contextMgrSet bool

	// pendingReads is consumed in order by WriteRead; each entry is copied
	// verbatim into the caller's readBuf (truncated if readBuf is smaller).
	pendingReads [][]byte

	// writes records every buffer passed to WriteRead's writeBuf, in order.
	writes [][]byte

	closed bool
}

// NewMockGateway returns a MockGateway reporting the given protocol version.
func NewMockGateway(version int32) *MockGateway {
	return &MockGateway{version: version}
}

// QueueRead appends a buffer to be returned by the next WriteRead call.
func (m *MockGateway) QueueRead(buf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	m.pendingReads = append(m.pendingReads, cp)
}

// Writes returns every write-side buffer submitted so far.
func (m *MockGateway) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *MockGateway) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockGateway) VerifyVersion() (int32, error) {
	return m.version, nil
}

func (m *MockGateway) SetMaxThreads(n uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxThreads = n
	return nil
}

func (m *MockGateway) SetContextManager(stability uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contextMgrSet {
		return fmt.Errorf("context manager already claimed")
	}
	m.contextMgrSet = true
	return nil
}

func (m *MockGateway) MmapReadArea(size int) error {
	return nil
}

func (m *MockGateway) WriteRead(writeBuf []byte, readBuf []byte) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, 0, fmt.Errorf("gateway closed")
	}

	if len(writeBuf) > 0 {
		cp := make([]byte, len(writeBuf))
		copy(cp, writeBuf)
		m.writes = append(m.writes, cp)
	}

	if len(m.pendingReads) == 0 || len(readBuf) == 0 {
		return len(writeBuf), 0, nil
	}

	next := m.pendingReads[0]
	m.pendingReads = m.pendingReads[1:]
	n := copy(readBuf, next)
	return len(writeBuf), n, nil
}

func (m *MockGateway) AddBinderfsDevice(name string) (uint32, uint32, error) {
	return 0, 0, nil
}

var _ Gateway = (*MockGateway)(nil)
