package gateway

import "testing"

func TestMockGatewayVersion(t *testing.T) {
	g := NewMockGateway(8)
	v, err := g.VerifyVersion()
	if err != nil {
		t.Fatalf("VerifyVersion: %v", err)
	}
	if v != 8 {
		t.Fatalf("expected version 8, got %d", v)
	}
}

func TestMockGatewayContextManagerOnce(t *testing.T) {
	g := NewMockGateway(8)
	if err := g.SetContextManager(0); err != nil {
		t.Fatalf("first SetContextManager: %v", err)
	}
	if err := g.SetContextManager(0); err == nil {
		t.Fatal("expected error claiming context manager twice")
	}
}

func TestMockGatewayWriteReadRoundTrip(t *testing.T) {
	g := NewMockGateway(8)
	want := []byte{1, 2, 3, 4}
	g.QueueRead(want)

	readBuf := make([]byte, 16)
	nw, nr, err := g.WriteRead([]byte{0xAA, 0xBB}, readBuf)
	if err != nil {
		t.Fatalf("WriteRead: %v", err)
	}
	if nw != 2 {
		t.Fatalf("expected 2 bytes written, got %d", nw)
	}
	if nr != len(want) {
		t.Fatalf("expected %d bytes read, got %d", len(want), nr)
	}
	for i := range want {
		if readBuf[i] != want[i] {
			t.Fatalf("byte %d: expected %x, got %x", i, want[i], readBuf[i])
		}
	}

	writes := g.Writes()
	if len(writes) != 1 || writes[0][0] != 0xAA {
		t.Fatalf("unexpected recorded writes: %v", writes)
	}
}

func TestMockGatewayWriteReadNoPendingData(t *testing.T) {
	g := NewMockGateway(8)
	readBuf := make([]byte, 16)
	_, nr, err := g.WriteRead(nil, readBuf)
	if err != nil {
		t.Fatalf("WriteRead: %v", err)
	}
	if nr != 0 {
		t.Fatalf("expected 0 bytes read with no queued data, got %d", nr)
	}
}

func TestMockGatewayClosed(t *testing.T) {
	g := NewMockGateway(8)
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := g.WriteRead([]byte{1}, make([]byte, 4)); err == nil {
		t.Fatal("expected WriteRead on closed gateway to fail")
	}
}
