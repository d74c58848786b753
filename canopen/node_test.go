package canopen

import (
	"sm4/motion"
	"sm4/objdict"
	"testing"
)

func TestNodeHandleFrameRxPDO2InvalidatesFailsafe(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	n := NewNode(5, 3200, dict)
	n.State.GoToOperational()

	if !n.State.IsMovementBlocked() {
		t.Fatalf("axis should be blocked before any RxPDO2 arrives")
	}

	f := EncodeVelocityPDO(1.5, -1.5)
	f.ID = FrameID(FuncRxPDO2, 5)
	if _, _, err := n.HandleFrame(f, 10); err != nil {
		t.Fatalf("HandleFrame() error = %v", err)
	}

	if n.State.IsMovementBlocked() {
		t.Fatalf("axis should not be blocked right after a fresh RxPDO2")
	}
	if dict.Axis1().TargetVelocity() != 1.5 || dict.Axis2().TargetVelocity() != -1.5 {
		t.Fatalf("RxPDO2 did not update target velocities")
	}
}

func TestNodeSyncOrdersTxPDOs(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	n := NewNode(5, 3200, dict)

	frames := n.Sync()
	want := []FunctionCode{FuncTxPDO1, FuncTxPDO2, FuncTxPDO3, FuncTxPDO4}
	for i, f := range frames {
		if ParseFunctionCode(f.ID) != want[i] {
			t.Fatalf("Sync()[%d] function code = %#x, want %#x", i, ParseFunctionCode(f.ID), want[i])
		}
	}
}

func TestNodeHandleFrameSDORoundTrip(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	n := NewNode(5, 3200, dict)

	req := sdoDownloadFrame(IndexAxis1, uint8(objdict.KeyAcceleration), f32ToBytes(33.0))
	req.ID = FrameID(FuncRxSDO, 5)

	reply, hasReply, err := n.HandleFrame(req, 10)
	if err != nil || !hasReply {
		t.Fatalf("HandleFrame(SDO download) = (_, %v, %v), want (_, true, nil)", hasReply, err)
	}
	if ParseFunctionCode(reply.ID) != FuncTxSDO || NodeID(reply.ID) != 5 {
		t.Fatalf("SDO reply frame ID = %#x, want TxSDO|5", reply.ID)
	}
}

func TestNodeHandleFrameUnknownFunctionCodeIsIgnored(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	n := NewNode(5, 3200, dict)

	logged := false
	n.SetLogger(func(string) { logged = true })

	_, hasReply, err := n.HandleFrame(Frame{ID: 0x7FF, Length: 8}, 10)
	if err != nil || hasReply {
		t.Fatalf("unknown function code should neither error nor reply")
	}
	if !logged {
		t.Fatalf("unknown function code should be logged")
	}
}

func TestNodeHandleFrameRxPDO1UpdatesModeAndEnabled(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	n := NewNode(5, 3200, dict)

	f := EncodeModeEnablePDO(ModeEnablePDO{
		Axis1Mode: motion.ModePosition, Axis2Mode: motion.ModeVelocity,
		Axis1Enabled: true, Axis2Enabled: false,
	})
	f.ID = FrameID(FuncRxPDO1, 5)

	if _, _, err := n.HandleFrame(f, 10); err != nil {
		t.Fatalf("HandleFrame() error = %v", err)
	}
	if dict.Axis1().Mode() != motion.ModePosition || !dict.Axis1().Enabled() {
		t.Fatalf("axis1 mode/enabled not applied from RxPDO1")
	}
	if dict.Axis2().Mode() != motion.ModeVelocity || dict.Axis2().Enabled() {
		t.Fatalf("axis2 mode/enabled not applied from RxPDO1")
	}
}
