// Fault signalling: a small allocation-free fan-out of callbacks that
// fire when a latching fault condition trips. Adapted from the
// donor's trsync.go TriggerSync/TriggerSignal (Klipper's multi-axis
// homing trigger synchronization), generalized from "an endstop fired"
// to "a fault condition latched" so the CAN bus-off handler and the
// I²C slave's bus-error recovery can both notify subscribers the same
// way, without a Klipper trigger-sync session behind it.
package core

// FaultSignal is a callback registered with a FaultLatch, invoked with
// a caller-defined reason code when the latch trips.
type FaultSignal struct {
	Callback func(reason uint8)
	Next     *FaultSignal
}

// FaultLatch is a one-shot latch: once tripped it stays tripped until
// Reset, and every registered FaultSignal fires exactly once per trip.
type FaultLatch struct {
	tripped bool
	reason  uint8
	signals *FaultSignal
}

// Reset re-arms the latch, clearing the tripped state.
func (f *FaultLatch) Reset() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	f.tripped = false
	f.reason = 0
}

// Trip latches the fault with reason and fires every registered
// signal. A latch that is already tripped does not re-fire signals,
// matching the donor's can-trigger-once-until-cleared semantics.
func (f *FaultLatch) Trip(reason uint8) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if f.tripped {
		return
	}
	f.tripped = true
	f.reason = reason

	signal := f.signals
	for signal != nil {
		if signal.Callback != nil {
			signal.Callback(reason)
		}
		signal = signal.Next
	}
}

// Tripped reports whether the latch is currently tripped, and the
// reason it was last tripped with.
func (f *FaultLatch) Tripped() (bool, uint8) {
	return f.tripped, f.reason
}

// AddSignal registers callback to fire the next time the latch trips.
func (f *FaultLatch) AddSignal(callback func(reason uint8)) *FaultSignal {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	signal := &FaultSignal{Callback: callback, Next: f.signals}
	f.signals = signal
	return signal
}
