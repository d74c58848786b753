package i2creg

import (
	"sm4/motion"
	"sm4/objdict"
	"testing"
)

type fakeNMT struct{ operational bool }

func (f *fakeNMT) GoToOperational() { f.operational = true }

type nopStore struct{}

func (nopStore) ReadF32(uint16) (float32, bool) { return 0, false }
func (nopStore) WriteF32(uint16, float32) error { return nil }
func (nopStore) Read(uint16) (uint32, bool)     { return 0, false }
func (nopStore) Write(uint16, uint32) error     { return nil }

func newTestSlave() (*Slave, *objdict.PersistentObjectDictionary, *fakeNMT) {
	dict := objdict.LoadPersistentObjectDictionary(3200, nopStore{})
	nmt := &fakeNMT{}
	return NewSlave(dict, nmt), dict, nmt
}

func TestSlaveWriteAxisSettingsTransitionsOperationalAndSetsState(t *testing.T) {
	s, dict, nmt := newTestSlave()

	s.Start(false)
	s.ByteReceived(RegAxisSettings)
	s.ByteReceived(0x11) // axis1 Position (bit0), axis2 Position (bit4)
	s.ByteReceived(0x11) // axis1 enabled, axis2 enabled
	s.Stop()

	if !nmt.operational {
		t.Fatalf("writing RegAxisSettings should transition NMT to Operational")
	}
	if dict.Axis1().Mode() != motion.ModePosition || dict.Axis2().Mode() != motion.ModePosition {
		t.Fatalf("axis modes not decoded from RegAxisSettings write")
	}
	if !dict.Axis1().Enabled() || !dict.Axis2().Enabled() {
		t.Fatalf("axis enabled flags not decoded from RegAxisSettings write")
	}
	if s.State() != StateIdle {
		t.Fatalf("State() after Stop() = %v, want Idle", s.State())
	}
}

func TestSlaveReadAxis1VelocityViaRepeatedStart(t *testing.T) {
	s, dict, _ := newTestSlave()
	dict.Axis1().SetActualVelocity(12.5)

	s.Start(false)
	s.ByteReceived(RegAxis1Velocity)
	if s.State() != StateRegisterSet {
		t.Fatalf("State() after register byte = %v, want RegisterSet", s.State())
	}

	s.Start(true) // repeated start, read phase
	var got []byte
	for {
		b, ok := s.ReadRequested()
		if !ok {
			break
		}
		got = append(got, b)
	}
	if len(got) != 4 {
		t.Fatalf("read %d bytes for RegAxis1Velocity, want 4", len(got))
	}
	if decodeF32(got) != 12.5 {
		t.Fatalf("decoded velocity = %v, want 12.5", decodeF32(got))
	}
}

func TestSlaveBusErrorResetsToIdleDiscardingPartialData(t *testing.T) {
	s, dict, _ := newTestSlave()

	s.Start(false)
	s.ByteReceived(RegAxis1Velocity)
	s.ByteReceived(0x01)
	s.ByteReceived(0x02)

	s.BusError()

	if s.State() != StateIdle {
		t.Fatalf("State() after BusError() = %v, want Idle", s.State())
	}

	// A subsequent write must start clean, proving no partial data survived.
	s.Start(false)
	s.ByteReceived(RegAxis2Velocity)
	s.ByteReceived(0x00)
	s.ByteReceived(0x00)
	s.ByteReceived(0x80)
	s.ByteReceived(0x3F) // 1.0 LE
	s.Stop()

	if got := dict.Axis2().TargetVelocity(); got != 1.0 {
		t.Fatalf("Axis2().TargetVelocity() after clean write = %v, want 1.0", got)
	}
}

func TestSlaveMalformedLengthWriteIsDiscarded(t *testing.T) {
	s, dict, _ := newTestSlave()
	before := dict.Axis1().TargetVelocity()

	s.Start(false)
	s.ByteReceived(RegAxis1Velocity)
	s.ByteReceived(0x01) // only 1 byte, not the required 4
	s.Stop()

	if dict.Axis1().TargetVelocity() != before {
		t.Fatalf("malformed-length write should be discarded, target velocity changed")
	}
}
