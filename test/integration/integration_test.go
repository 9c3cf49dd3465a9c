// +build integration

package integration

import (
	"os"
	"testing"

	gobinder "github.com/ehrlich-b/gobinder"
)

// requireRoot skips the test if not running as root.
func requireRoot(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("This test requires root privileges")
	}
}

// requireBinderDevice skips if no binder device is available on this host.
func requireBinderDevice(t *testing.T) {
	if _, err := os.Stat(gobinder.DefaultBinderPath); os.IsNotExist(err) {
		t.Skip("binder device not available, is binderfs mounted?")
	}
}

func TestIntegrationProcessInitAndContextManager(t *testing.T) {
	requireRoot(t)
	requireBinderDevice(t)

	if err := gobinder.Init(gobinder.Options{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := gobinder.BecomeContextManager(); err != nil {
		t.Logf("BecomeContextManager failed (expected if another process already holds it): %v", err)
	}

	if err := gobinder.StartThreadPool(); err != nil {
		t.Fatalf("StartThreadPool failed: %v", err)
	}
}

func TestIntegrationNativeLocalTransact(t *testing.T) {
	requireRoot(t)
	requireBinderDevice(t)

	if err := gobinder.Init(gobinder.Options{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	echo, err := gobinder.NewNative(func(code uint32, data *gobinder.Parcel) (*gobinder.Parcel, error) {
		s, _, err := data.ReadString()
		if err != nil {
			return nil, err
		}
		reply := gobinder.NewParcel()
		reply.WriteString(s)
		return reply, nil
	})
	if err != nil {
		t.Fatalf("NewNative failed: %v", err)
	}

	req := gobinder.NewParcel()
	req.WriteString("ping")

	reply, err := echo.Transact(1, req, false)
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	got, _, err := reply.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if got != "ping" {
		t.Errorf("got reply %q, want %q", got, "ping")
	}
}
