package canopen

import (
	"sm4/motion"
	"testing"
)

func TestDecodeModeEnablePDOWorkedExample(t *testing.T) {
	// spec worked example: input [0x11, 0x03] -> both axes Position
	// mode, both enabled.
	f := Frame{Data: [8]byte{0x11, 0x03}, Length: 2}
	got := DecodeModeEnablePDO(f.Data)

	if got.Axis1Mode != motion.ModePosition || got.Axis2Mode != motion.ModePosition {
		t.Fatalf("DecodeModeEnablePDO() modes = (%v, %v), want (Position, Position)", got.Axis1Mode, got.Axis2Mode)
	}
	if !got.Axis1Enabled || !got.Axis2Enabled {
		t.Fatalf("DecodeModeEnablePDO() enabled = (%v, %v), want (true, true)", got.Axis1Enabled, got.Axis2Enabled)
	}
}

func TestEncodePositionPDOWorkedExample(t *testing.T) {
	p := motion.NewPosition(3200, 2, 7)
	f := EncodePositionPDO(p)

	want := [8]byte{0x02, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}
	if f.Data != want {
		t.Fatalf("EncodePositionPDO() = %#v, want %#v", f.Data, want)
	}
}

func TestPositionPDORoundTrip(t *testing.T) {
	p := motion.NewPosition(3200, -4, 19)
	f := EncodePositionPDO(p)
	got := DecodePositionPDO(3200, f.Data)

	if got.GetRevolutions() != p.GetRevolutions() || got.GetAngle() != p.GetAngle() {
		t.Fatalf("DecodePositionPDO(EncodePositionPDO(p)) = %+v, want %+v", got, p)
	}
}

func TestVelocityPDORoundTrip(t *testing.T) {
	f := EncodeVelocityPDO(1.5, -2.25)
	a1, a2 := DecodeVelocityPDO(f.Data)

	if a1 != 1.5 || a2 != -2.25 {
		t.Fatalf("DecodeVelocityPDO(EncodeVelocityPDO(...)) = (%v, %v), want (1.5, -2.25)", a1, a2)
	}
}

func TestEncodeTxPDO1(t *testing.T) {
	f := EncodeTxPDO1(12.0, 23.4)
	if f.Length != 4 {
		t.Fatalf("EncodeTxPDO1() length = %d, want 4", f.Length)
	}
	mV := uint16(f.Data[0]) | uint16(f.Data[1])<<8
	tenths := uint16(f.Data[2]) | uint16(f.Data[3])<<8
	if mV != 12000 {
		t.Fatalf("EncodeTxPDO1() battery mV = %d, want 12000", mV)
	}
	if tenths != 234 {
		t.Fatalf("EncodeTxPDO1() temperature tenths = %d, want 234", tenths)
	}
}
