package canopen

import "sm4/motion"

// NMT Node Control command bytes, ported from original_source's
// NMTCommand enum (can.rs).
const (
	nmtCmdOperational       byte = 0x01
	nmtCmdStopped           byte = 0x02
	nmtCmdPreOperational    byte = 0x80
	nmtCmdResetNode         byte = 0x81
	nmtCmdResetCommunication byte = 0x82
)

// FatalResetRequested is returned by HandleNMT when the host requests
// ResetNode or ResetCommunication, neither of which this node
// implements (spec.md §4.I explicitly treats them as a clearly-logged
// fatal rather than attempting a partial reset). The caller is
// expected to log this and halt, matching original_source's panic on
// these two commands.
type FatalResetRequested struct {
	Communication bool
}

func (e *FatalResetRequested) Error() string {
	if e.Communication {
		return "NMT ResetCommunication requested: not implemented"
	}
	return "NMT ResetNode requested: not implemented"
}

// HandleNMT applies an NMT Node Control frame to state if it targets
// this node, ignoring it otherwise. Ported from
// original_source's handle_nmt_node_control.
func HandleNMT(state *motion.DriverState, nodeID uint8, f Frame) error {
	if f.Length < 2 || f.Data[1] != nodeID {
		return nil
	}
	switch f.Data[0] {
	case nmtCmdOperational:
		state.GoToOperational()
	case nmtCmdStopped:
		state.GoToStopped()
	case nmtCmdPreOperational:
		state.GoToPreOperational()
	case nmtCmdResetNode:
		return &FatalResetRequested{Communication: false}
	case nmtCmdResetCommunication:
		return &FatalResetRequested{Communication: true}
	}
	return nil
}

// EncodeHeartbeat builds the NMTNodeMonitoring frame this node
// broadcasts every config.HeartbeatPeriod.
func EncodeHeartbeat(nodeID uint16, state motion.NMTState) Frame {
	var f Frame
	f.ID = FrameID(FuncNMTNodeMonitoring, nodeID)
	f.Length = 1
	f.Data[0] = state.WireValue()
	return f
}
