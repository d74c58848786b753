package canopen

import (
	"sm4/motion"
	"testing"
)

func TestHandleNMTIgnoresFrameForOtherNode(t *testing.T) {
	s := motion.NewDriverState()
	s.GoToPreOperationalIfNeeded()

	f := Frame{Length: 2, Data: [8]byte{nmtCmdOperational, 9}}
	if err := HandleNMT(s, 5, f); err != nil {
		t.Fatalf("HandleNMT() error = %v", err)
	}
	if s.NMTState() != motion.NMTPreOperational {
		t.Fatalf("NMT state changed despite targeting a different node")
	}
}

func TestHandleNMTTransitionsToOperational(t *testing.T) {
	s := motion.NewDriverState()
	s.GoToPreOperationalIfNeeded()

	f := Frame{Length: 2, Data: [8]byte{nmtCmdOperational, 5}}
	if err := HandleNMT(s, 5, f); err != nil {
		t.Fatalf("HandleNMT() error = %v", err)
	}
	if s.NMTState() != motion.NMTOperational {
		t.Fatalf("NMTState() = %v, want Operational", s.NMTState())
	}
}

func TestHandleNMTResetNodeIsFatal(t *testing.T) {
	s := motion.NewDriverState()
	f := Frame{Length: 2, Data: [8]byte{nmtCmdResetNode, 5}}
	if err := HandleNMT(s, 5, f); err == nil {
		t.Fatalf("HandleNMT() should report ResetNode as an error, not silently apply it")
	}
}

func TestEncodeHeartbeatWireValues(t *testing.T) {
	cases := map[motion.NMTState]byte{
		motion.NMTBootUp:         0x00,
		motion.NMTStopped:        0x04,
		motion.NMTOperational:    0x05,
		motion.NMTPreOperational: 0x7F,
	}
	for state, want := range cases {
		f := EncodeHeartbeat(5, state)
		if f.Data[0] != want {
			t.Errorf("EncodeHeartbeat(%v).Data[0] = %#x, want %#x", state, f.Data[0], want)
		}
		if ParseFunctionCode(f.ID) != FuncNMTNodeMonitoring {
			t.Errorf("EncodeHeartbeat(%v) function code wrong", state)
		}
	}
}
