package binderthread

import (
	"testing"

	"github.com/ehrlich-b/gobinder/internal/gateway"
	"github.com/ehrlich-b/gobinder/internal/parcel"
	"github.com/ehrlich-b/gobinder/internal/refs"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

func opBytes(op uintptr) []byte {
	p := parcel.New()
	p.WriteUint32(uint32(op))
	return p.Bytes()
}

func newTestThread(gw *gateway.MockGateway, dispatch Dispatcher) *ThreadState {
	return New(Deps{
		Gateway:  gw,
		Handles:  refs.NewHandleTable(),
		Natives:  refs.NewNativeTable(),
		Death:    refs.NewDeathWatchers(),
		Dispatch: dispatch,
	})
}

func TestOneWayTransactionCompletesOnAck(t *testing.T) {
	gw := gateway.NewMockGateway(8)
	gw.QueueRead(opBytes(uapi.BR_TRANSACTION_COMPLETE))

	ts := newTestThread(gw, nil)
	reply, err := ts.Transact(Call{Handle: 5, Code: 1, OneWay: true, Data: parcel.New()})
	if err != nil {
		t.Fatalf("one-way Transact: %v", err)
	}
	if reply != nil {
		t.Fatal("one-way call should not return a reply parcel")
	}
}

func TestTransactionFailsOnDeadReply(t *testing.T) {
	gw := gateway.NewMockGateway(8)
	gw.QueueRead(opBytes(uapi.BR_DEAD_REPLY))

	ts := newTestThread(gw, nil)
	_, err := ts.Transact(Call{Handle: 5, Code: 1, Data: parcel.New()})
	if err == nil {
		t.Fatal("expected dead-reply error")
	}
}

func TestDeathRecipientFiresOnce(t *testing.T) {
	gw := gateway.NewMockGateway(8)
	ts := newTestThread(gw, nil)

	fired := 0
	cookie := ts.death.Register(3, func() { fired++ })

	p := parcel.New()
	p.WriteUint32(uint32(uapi.BR_DEAD_BINDER))
	p.WriteUint64(cookie)
	gw.QueueRead(p.Bytes())
	gw.QueueRead(opBytes(uapi.BR_DEAD_REPLY))

	_, _ = ts.Transact(Call{Handle: 5, Code: 1, Data: parcel.New()})
	if fired != 1 {
		t.Fatalf("expected death recipient to fire exactly once, got %d", fired)
	}
}

func TestSpawnLooperInvokedOnBRSpawnLooper(t *testing.T) {
	gw := gateway.NewMockGateway(8)
	gw.QueueRead(opBytes(uapi.BR_SPAWN_LOOPER))
	gw.QueueRead(opBytes(uapi.BR_DEAD_REPLY))

	spawned := false
	ts := New(Deps{
		Gateway:     gw,
		Handles:     refs.NewHandleTable(),
		Natives:     refs.NewNativeTable(),
		Death:       refs.NewDeathWatchers(),
		SpawnLooper: func() { spawned = true },
	})

	_, _ = ts.Transact(Call{Handle: 0, Code: 1, Data: parcel.New()})
	if !spawned {
		t.Fatal("expected BR_SPAWN_LOOPER to invoke the SpawnLooper callback")
	}
}
