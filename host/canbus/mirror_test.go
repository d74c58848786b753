package canbus

import (
	"sync"
	"testing"
	"time"

	"sm4/canopen"
	"sm4/motion"
)

// fakeBus is an in-memory Bus double: Receive drains an inbound queue
// fed by the test, Send appends to an outbound log the test inspects.
type fakeBus struct {
	mu      sync.Mutex
	inbound chan canopen.Frame
	sent    []canopen.Frame
}

func newFakeBus() *fakeBus {
	return &fakeBus{inbound: make(chan canopen.Frame, 16)}
}

func (b *fakeBus) Receive() (canopen.Frame, error) {
	return <-b.inbound, nil
}

func (b *fakeBus) Send(f canopen.Frame) error {
	b.mu.Lock()
	b.sent = append(b.sent, f)
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) sentFrames() []canopen.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]canopen.Frame(nil), b.sent...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within timeout")
}

func TestMirrorSyncSynthesisesRxPDOs(t *testing.T) {
	bus := newFakeBus()
	m := NewMirror(5, 3200, bus)
	defer m.Close()

	m.SetAxis1TargetVelocity(2.0)
	m.SetAxis2Enabled(true)

	bus.inbound <- canopen.Frame{ID: uint16(canopen.FuncSync)}

	waitFor(t, func() bool { return len(bus.sentFrames()) >= 4 })

	frames := bus.sentFrames()
	wantCodes := []canopen.FunctionCode{canopen.FuncRxPDO1, canopen.FuncRxPDO2, canopen.FuncRxPDO3, canopen.FuncRxPDO4}
	for i, want := range wantCodes {
		if canopen.ParseFunctionCode(frames[i].ID) != want {
			t.Fatalf("frame %d function code = %#x, want %#x", i, canopen.ParseFunctionCode(frames[i].ID), want)
		}
	}

	a1, _ := canopen.DecodeVelocityPDO(frames[1].Data)
	if a1 != 2.0 {
		t.Fatalf("synthesised RxPDO2 axis1 velocity = %v, want 2.0", a1)
	}
}

func TestMirrorDecodesTxPDOsIntoState(t *testing.T) {
	bus := newFakeBus()
	m := NewMirror(5, 3200, bus)
	defer m.Close()

	tx1 := canopen.EncodeTxPDO1(12.5, 23.0)
	tx1.ID = canopen.FrameID(canopen.FuncTxPDO1, 5)
	bus.inbound <- tx1
	tx2 := canopen.EncodeVelocityPDO(1.0, -1.0)
	tx2.ID = canopen.FrameID(canopen.FuncTxPDO2, 5)
	bus.inbound <- tx2

	waitFor(t, func() bool {
		s := m.State()
		return s.Voltage == 12.5 && s.Axis1.ActualVelocity == 1.0
	})
}

func TestMirrorCoercesNonOperationalHeartbeatToOperational(t *testing.T) {
	bus := newFakeBus()
	m := NewMirror(5, 3200, bus)
	defer m.Close()

	hb := canopen.EncodeHeartbeat(5, motion.NMTPreOperational)
	bus.inbound <- hb

	waitFor(t, func() bool {
		frames := bus.sentFrames()
		for _, f := range frames {
			if canopen.ParseFunctionCode(f.ID) == canopen.FuncNMTNodeControl && f.Data[0] == 0x01 {
				return true
			}
		}
		return false
	})

	if m.State().NMTState != motion.NMTPreOperational {
		t.Fatalf("State().NMTState = %v, want PreOperational (mirrors what was observed)", m.State().NMTState)
	}
}
