package motion

// NMTState is the CANopen Network Management state of this node.
// Ported from original_source's NMTState (can.rs / state.rs).
type NMTState uint8

const (
	NMTBootUp NMTState = iota
	NMTStopped
	NMTOperational
	NMTPreOperational
)

// WireValue returns the single byte this state is encoded as on the
// CANopen bus (heartbeat / boot-up messages), ported from
// `impl From<NMTState> for u8` in can.rs.
func (s NMTState) WireValue() uint8 {
	switch s {
	case NMTBootUp:
		return 0x00
	case NMTStopped:
		return 0x04
	case NMTOperational:
		return 0x05
	case NMTPreOperational:
		return 0x7F
	default:
		return 0x00
	}
}

func (s NMTState) String() string {
	switch s {
	case NMTBootUp:
		return "BootUp"
	case NMTStopped:
		return "Stopped"
	case NMTOperational:
		return "Operational"
	case NMTPreOperational:
		return "PreOperational"
	default:
		return "Unknown"
	}
}

// DriverState tracks this node's NMT state and the speed-command
// failsafe down-counter. Ported from original_source's DriverState
// (state.rs): the down-counter starts invalidated (0) at boot so the
// axis stays blocked until the host sends at least one RxPDO2, and is
// re-armed to SpeedCommandResetInterval every time a target-velocity
// command is received.
type DriverState struct {
	nmtState               NMTState
	speedCommandDownCounter uint8
}

// NewDriverState returns a DriverState starting in BootUp with the
// failsafe counter at zero (movement blocked), matching
// DriverState::new() in state.rs.
func NewDriverState() *DriverState {
	return &DriverState{nmtState: NMTBootUp}
}

// NMTState returns the current NMT state.
func (d *DriverState) NMTState() NMTState { return d.nmtState }

// GoToPreOperationalIfNeeded transitions BootUp -> PreOperational and
// is a no-op from any other state, ported from
// go_to_preoperational_if_needed.
func (d *DriverState) GoToPreOperationalIfNeeded() {
	if d.nmtState == NMTBootUp {
		d.nmtState = NMTPreOperational
	}
}

// GoToOperational transitions unconditionally to Operational.
func (d *DriverState) GoToOperational() { d.nmtState = NMTOperational }

// GoToStopped transitions unconditionally to Stopped.
func (d *DriverState) GoToStopped() { d.nmtState = NMTStopped }

// GoToPreOperational transitions unconditionally to PreOperational.
func (d *DriverState) GoToPreOperational() { d.nmtState = NMTPreOperational }

// IsMovementBlocked reports whether axis movement must be suppressed:
// either the node is not Operational, or the speed-command failsafe
// has timed out with no fresh RxPDO2. Ported from
// DriverState::is_movement_blocked.
func (d *DriverState) IsMovementBlocked() bool {
	return d.nmtState != NMTOperational || d.speedCommandDownCounter == 0
}

// DecrementSpeedCommandCounter saturating-decrements the failsafe
// counter, ported from decrement_last_received_speed_command_counter.
// Called once per failsafe tick (config.FailsafeTickPeriod).
func (d *DriverState) DecrementSpeedCommandCounter() {
	if d.speedCommandDownCounter > 0 {
		d.speedCommandDownCounter--
	}
}

// InvalidateSpeedCommandCounter re-arms the failsafe counter, ported
// from invalidate_last_received_speed_command_counter. Called whenever
// an RxPDO2 (target velocity command) is received.
func (d *DriverState) InvalidateSpeedCommandCounter(resetInterval uint8) {
	d.speedCommandDownCounter = resetInterval
}
