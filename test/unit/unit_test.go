// +build !integration

package unit

import (
	"testing"

	gobinder "github.com/ehrlich-b/gobinder"
)

// These tests exercise the public facade without opening a real binder
// device, mirroring how the device-free constant/struct checks in the
// teacher's unit package ran without root or kernel support.

func TestDefaultsArePositive(t *testing.T) {
	if gobinder.DefaultMaxThreads <= 0 {
		t.Error("DefaultMaxThreads should be positive")
	}
	if gobinder.DefaultMmapSize <= 0 {
		t.Error("DefaultMmapSize should be positive")
	}
	if gobinder.DefaultBinderPath == "" {
		t.Error("DefaultBinderPath should not be empty")
	}
}

func TestParcelPrimitiveRoundTrip(t *testing.T) {
	p := gobinder.NewParcel()
	p.WriteInt32(42)
	p.WriteString("hello")
	p.WriteBool(true)

	p.SetPosition(0)
	n, err := p.ReadInt32()
	if err != nil || n != 42 {
		t.Errorf("ReadInt32 = (%d, %v), want (42, nil)", n, err)
	}

	s, ok, err := p.ReadString()
	if err != nil || !ok || s != "hello" {
		t.Errorf("ReadString = (%q, %v, %v), want (\"hello\", true, nil)", s, ok, err)
	}

	b, err := p.ReadBool()
	if err != nil || !b {
		t.Errorf("ReadBool = (%v, %v), want (true, nil)", b, err)
	}
}

func TestServiceErrorMessage(t *testing.T) {
	var _ error = gobinder.NewServiceError(1, "boom")

	se := gobinder.NewServiceError(1, "boom")
	if se.Error() == "" {
		t.Error("ServiceError.Error() should not be empty")
	}
}

func TestHolderRoundTrip(t *testing.T) {
	h := gobinder.NewHolder()
	h.Set(func(p *gobinder.Parcel) error {
		p.WriteInt32(7)
		return nil
	})

	p := gobinder.NewParcel()
	if err := h.WriteTo(p); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	p.SetPosition(0)
	out := gobinder.NewHolder()
	if err := out.ReadFrom(p); err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if !out.IsPresent() {
		t.Fatal("expected holder to be present after reading a set value")
	}

	var got int32
	if err := out.Decode(func(sub *gobinder.Parcel) error {
		v, err := sub.ReadInt32()
		got = v
		return err
	}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != 7 {
		t.Errorf("decoded value = %d, want 7", got)
	}
}

func TestHolderAbsent(t *testing.T) {
	h := gobinder.NewHolder()
	if h.IsPresent() {
		t.Error("fresh holder should not be present")
	}

	p := gobinder.NewParcel()
	if err := h.WriteTo(p); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	p.SetPosition(0)
	out := gobinder.NewHolder()
	if err := out.ReadFrom(p); err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if out.IsPresent() {
		t.Error("holder decoded from an absent value should not be present")
	}
}
