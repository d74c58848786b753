package motion

import "testing"

func TestDriverStateBootSequence(t *testing.T) {
	d := NewDriverState()
	if d.NMTState() != NMTBootUp {
		t.Fatalf("new DriverState state = %v, want BootUp", d.NMTState())
	}
	if !d.IsMovementBlocked() {
		t.Fatalf("movement should be blocked at boot (not Operational, counter=0)")
	}

	d.GoToPreOperationalIfNeeded()
	if d.NMTState() != NMTPreOperational {
		t.Fatalf("state after GoToPreOperationalIfNeeded() = %v, want PreOperational", d.NMTState())
	}

	d.GoToPreOperationalIfNeeded() // no-op from non-BootUp
	if d.NMTState() != NMTPreOperational {
		t.Fatalf("GoToPreOperationalIfNeeded() should be a no-op outside BootUp")
	}
}

func TestDriverStateFailsafeCounter(t *testing.T) {
	d := NewDriverState()
	d.GoToOperational()
	if !d.IsMovementBlocked() {
		t.Fatalf("movement should stay blocked until a speed command is received")
	}

	d.InvalidateSpeedCommandCounter(10)
	if d.IsMovementBlocked() {
		t.Fatalf("movement should be unblocked once Operational with an armed counter")
	}

	for i := 0; i < 10; i++ {
		d.DecrementSpeedCommandCounter()
	}
	if !d.IsMovementBlocked() {
		t.Fatalf("movement should re-block once the failsafe counter reaches zero")
	}

	// Saturating: further decrements past zero must not wrap.
	d.DecrementSpeedCommandCounter()
	if !d.IsMovementBlocked() {
		t.Fatalf("counter must saturate at zero, not wrap")
	}
}

func TestNMTStateWireValues(t *testing.T) {
	cases := map[NMTState]uint8{
		NMTBootUp:         0x00,
		NMTStopped:        0x04,
		NMTOperational:     0x05,
		NMTPreOperational: 0x7F,
	}
	for state, want := range cases {
		if got := state.WireValue(); got != want {
			t.Fatalf("%v.WireValue() = %#x, want %#x", state, got, want)
		}
	}
}
