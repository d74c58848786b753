// Package canopen implements the CANopen protocol subset this board
// speaks: NMT state management, SYNC-driven TxPDO publication, RxPDO
// consumption, and expedited SDO read/write against the object
// dictionary.
//
// Ported from original_source/Software/sm4-firmware/src/can.rs and
// original_source/Software/embedded/firmware/src/protocol/canopen.rs.
package canopen

// Frame is a standard (11-bit identifier) CAN frame.
type Frame struct {
	ID     uint16
	Data   [8]byte
	Length uint8
}

// FunctionCode identifies the kind of CANopen message a frame's
// identifier carries, ported from can.rs's CANOpenMessage enum.
type FunctionCode uint16

const (
	FuncNMTNodeControl     FunctionCode = 0x000
	FuncGlobalFailsafe     FunctionCode = 0x001
	FuncSync               FunctionCode = 0x080
	FuncEmergency          FunctionCode = 0x081
	FuncTimeStamp          FunctionCode = 0x100
	FuncTxPDO1             FunctionCode = 0x180
	FuncRxPDO1             FunctionCode = 0x200
	FuncTxPDO2             FunctionCode = 0x280
	FuncRxPDO2             FunctionCode = 0x300
	FuncTxPDO3             FunctionCode = 0x380
	FuncRxPDO3             FunctionCode = 0x400
	FuncTxPDO4             FunctionCode = 0x480
	FuncRxPDO4             FunctionCode = 0x500
	FuncTxSDO              FunctionCode = 0x580
	FuncRxSDO              FunctionCode = 0x600
	FuncNMTNodeMonitoring  FunctionCode = 0x700
)

// functionCodeMask isolates the function-code bits of a standard
// 11-bit CANopen identifier, leaving the low 7 bits (the node ID) for
// the caller. Ported from can.rs's `value & 0xff80`.
const functionCodeMask uint16 = 0xff80

// ParseFunctionCode extracts the function code from a frame's
// identifier. The fixed identifiers of GlobalFailsafe (0x001) and
// Emergency (0x081) are matched exactly before masking, since the mask
// alone would fold them into NMT node control and SYNC.
func ParseFunctionCode(id uint16) FunctionCode {
	if fn := FunctionCode(id); fn == FuncGlobalFailsafe || fn == FuncEmergency {
		return fn
	}
	return FunctionCode(id & functionCodeMask)
}

// NodeID extracts the low 7 bits (the addressed node) from a frame's
// identifier.
func NodeID(id uint16) uint16 {
	return id &^ functionCodeMask
}

// FrameID builds a standard identifier from a function code and node
// ID.
func FrameID(fn FunctionCode, nodeID uint16) uint16 {
	return uint16(fn) | (nodeID &^ functionCodeMask)
}

// knownFunctionCode reports whether fn names one of the function codes
// this node recognizes, used to distinguish "recognized but ignored"
// (GlobalFailsafe, Emergency — supplemented per SPEC_FULL.md §12) from
// a genuinely unknown identifier.
func knownFunctionCode(fn FunctionCode) bool {
	switch fn {
	case FuncNMTNodeControl, FuncGlobalFailsafe, FuncSync, FuncEmergency,
		FuncTimeStamp, FuncTxPDO1, FuncRxPDO1, FuncTxPDO2, FuncRxPDO2,
		FuncTxPDO3, FuncRxPDO3, FuncTxPDO4, FuncRxPDO4, FuncTxSDO,
		FuncRxSDO, FuncNMTNodeMonitoring:
		return true
	default:
		return false
	}
}
