package canopen

import (
	"sm4/motion"
	"sm4/objdict"
)

// Logger matches core.DebugWriter's shape so firmware targets can wire
// this package's diagnostics straight into the existing debug-output
// plumbing without pulling core into canopen's import graph.
type Logger func(string)

func noopLogger(string) {}

// Node ties together this board's NMT/failsafe state and object
// dictionary with the function-code dispatch table, and is the single
// entry point both the firmware CAN ISR and the host mirror drive.
// Ported from original_source's Can struct (can.rs) and the
// update_object_dictionary / handle_sync dispatch in canopen.rs.
type Node struct {
	ID    uint16
	State *motion.DriverState
	Dict  *objdict.PersistentObjectDictionary
	Log   Logger

	resolution uint32
}

// NewNode builds a Node at the given CAN node ID and encoder
// resolution, logging nowhere unless SetLogger is called.
func NewNode(id uint16, resolution uint32, dict *objdict.PersistentObjectDictionary) *Node {
	return &Node{
		ID:         id,
		State:      motion.NewDriverState(),
		Dict:       dict,
		Log:        noopLogger,
		resolution: resolution,
	}
}

// SetLogger installs the diagnostic sink; passing nil restores the
// no-op logger.
func (n *Node) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger
	}
	n.Log = l
}

// HandleFrame dispatches one received frame by function code. Unknown
// function codes, and the two function codes this node recognises but
// intentionally ignores (GlobalFailsafeCommand, Emergency — see
// SPEC_FULL.md §12), are logged and dropped without a wire response,
// matching the "malformed frame" handling spec.md §5 specifies for
// every other unrecognised input.
func (n *Node) HandleFrame(f Frame, speedCommandResetInterval uint8) (reply Frame, hasReply bool, err error) {
	fn := ParseFunctionCode(f.ID)

	switch fn {
	case FuncNMTNodeControl:
		err = HandleNMT(n.State, uint8(n.ID), f)
		return Frame{}, false, err

	case FuncRxPDO1:
		n.handleRxPDO1(f)
		return Frame{}, false, nil

	case FuncRxPDO2:
		n.handleRxPDO2(f, speedCommandResetInterval)
		return Frame{}, false, nil

	case FuncRxPDO3:
		n.Dict.Axis1().SetTargetPosition(DecodePositionPDO(n.resolution, f.Data))
		return Frame{}, false, nil

	case FuncRxPDO4:
		n.Dict.Axis2().SetTargetPosition(DecodePositionPDO(n.resolution, f.Data))
		return Frame{}, false, nil

	case FuncRxSDO:
		reply, hasReply = HandleSDO(n.Dict, f)
		if hasReply {
			reply.ID = FrameID(FuncTxSDO, n.ID)
		}
		return reply, hasReply, nil

	case FuncGlobalFailsafe, FuncEmergency:
		n.Log("canopen: recognised but unhandled function code received")
		return Frame{}, false, nil

	default:
		if !knownFunctionCode(fn) {
			n.Log("canopen: discarding frame with unrecognised identifier")
		}
		return Frame{}, false, nil
	}
}

func (n *Node) handleRxPDO1(f Frame) {
	p := DecodeModeEnablePDO(f.Data)
	n.Dict.Axis1().SetMode(p.Axis1Mode)
	n.Dict.Axis2().SetMode(p.Axis2Mode)
	n.Dict.Axis1().SetEnabled(p.Axis1Enabled)
	n.Dict.Axis2().SetEnabled(p.Axis2Enabled)
}

func (n *Node) handleRxPDO2(f Frame, resetInterval uint8) {
	axis1RPS, axis2RPS := DecodeVelocityPDO(f.Data)
	n.Dict.Axis1().SetTargetVelocity(axis1RPS)
	n.Dict.Axis2().SetTargetVelocity(axis2RPS)
	n.State.InvalidateSpeedCommandCounter(resetInterval)
}

// Sync builds the four TxPDO frames to publish in response to a SYNC
// broadcast, in the fixed order spec.md §4.I mandates: TxPDO1 < TxPDO2
// < TxPDO3 < TxPDO4. The caller is responsible for sending each frame
// and for continuing to the next one even if a send fails (spec.md
// §4.I: "logged and signalled on an error LED but does not block
// subsequent publishes").
func (n *Node) Sync() [4]Frame {
	od := n.Dict

	f1 := EncodeTxPDO1(od.BatteryVoltage(), od.Temperature())
	f1.ID = FrameID(FuncTxPDO1, n.ID)

	f2 := EncodeVelocityPDO(od.Axis1().ActualVelocity(), od.Axis2().ActualVelocity())
	f2.ID = FrameID(FuncTxPDO2, n.ID)

	f3 := EncodePositionPDO(od.Axis1().ActualPosition())
	f3.ID = FrameID(FuncTxPDO3, n.ID)

	f4 := EncodePositionPDO(od.Axis2().ActualPosition())
	f4.ID = FrameID(FuncTxPDO4, n.ID)

	return [4]Frame{f1, f2, f3, f4}
}

// Heartbeat builds the periodic NMTNodeMonitoring frame.
func (n *Node) Heartbeat() Frame {
	return EncodeHeartbeat(n.ID, n.State.NMTState())
}
