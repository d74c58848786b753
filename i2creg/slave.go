// Package i2creg implements the board's I²C slave register protocol:
// a small fixed register map addressed the way a master-write(register,
// data...)/master-write(register)-then-repeated-start-read sequence
// expects, backed by the same object dictionary the CANopen layer
// serves. Ported from original_source/Software/sm4-firmware/src/i2c.rs.
package i2creg

import "sm4/objdict"

// SlaveAddress is this board's fixed 7-bit I²C address.
const SlaveAddress = 0x55

// Register numbers, ported from i2c.rs's Register enum.
const (
	RegAxisSettings   byte = 0x10
	RegAxis1Velocity  byte = 0x21
	RegAxis2Velocity  byte = 0x22
	RegAxis1Position  byte = 0x31
	RegAxis2Position  byte = 0x32
	RegBothVelocity   byte = 0x40 // write-only
	RegBothPosition   byte = 0x50 // read-only
)

// widthFor returns the read and write widths for a register, and
// whether each direction is actually supported. Ported from the table
// in spec.md §4.J / i2c.rs's per-register width match.
func widthFor(reg byte) (readWidth, writeWidth int, readable, writable bool) {
	switch reg {
	case RegAxisSettings:
		return 2, 2, true, true
	case RegAxis1Velocity, RegAxis2Velocity:
		return 4, 4, true, true
	case RegAxis1Position, RegAxis2Position:
		return 8, 8, true, true
	case RegBothVelocity:
		return 0, 8, false, true
	case RegBothPosition:
		return 16, 0, true, false
	default:
		return 0, 0, false, false
	}
}

// State is the I²C slave's protocol state, ported from i2c.rs's
// SlaveState enum.
type State uint8

const (
	StateIdle State = iota
	StateAddressed
	StateRegisterSet
	StateReceiving
	StateTransmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAddressed:
		return "Addressed"
	case StateRegisterSet:
		return "RegisterSet"
	case StateReceiving:
		return "Receiving"
	case StateTransmitting:
		return "Transmitting"
	default:
		return "Unknown"
	}
}

// Slave implements the register-addressed I²C slave state machine
// against a PersistentObjectDictionary. It holds no goroutines or bus
// handle of its own — the platform I²C peripheral driver calls its
// event methods (Start, ByteReceived, ReadRequested, Stop, BusError)
// from the bus ISR/callback (see targets/stm32f4/i2cslave.go, which
// translates machine.I2C target-mode events into these calls).
type Slave struct {
	state State
	reg   byte
	buf   []byte

	dict *objdict.PersistentObjectDictionary
	nmt  NMTOperationalSetter

	// OnBusError, if set, is called from BusError after the protocol
	// state has been reset to Idle. Firmware targets use this to trip
	// a core.FaultLatch and surface repeated bus errors the same way a
	// CAN bus-off condition does, without this package importing core.
	OnBusError func()
}

// NMTOperationalSetter is the minimal hook into the NMT state machine
// this package needs: writing RegAxisSettings implicitly transitions
// the node to Operational, ported from i2c.rs's handle_register_write.
// Defined here (not imported from motion) to avoid a needless coupling
// to motion.DriverState's full interface.
type NMTOperationalSetter interface {
	GoToOperational()
}

// NewSlave builds a Slave addressing dict, applying nmt.GoToOperational
// whenever RegAxisSettings is written.
func NewSlave(dict *objdict.PersistentObjectDictionary, nmt NMTOperationalSetter) *Slave {
	return &Slave{state: StateIdle, dict: dict, nmt: nmt}
}

// State returns the slave's current protocol state.
func (s *Slave) State() State { return s.state }

// Start handles a START condition matching our address; write selects
// the Addressed state awaiting the register byte, read is only valid
// after a register has already been set by a prior write phase (a
// repeated start), in which case it moves directly to Transmitting.
func (s *Slave) Start(isRead bool) {
	if isRead && s.state == StateRegisterSet {
		s.beginTransmit()
		return
	}
	s.state = StateAddressed
	s.buf = s.buf[:0]
}

// ByteReceived handles one master-write byte. The first byte after
// Addressed sets the target register; subsequent bytes accumulate into
// the receive buffer.
func (s *Slave) ByteReceived(b byte) {
	switch s.state {
	case StateAddressed:
		s.reg = b
		s.state = StateRegisterSet
	case StateRegisterSet, StateReceiving:
		s.state = StateReceiving
		s.buf = append(s.buf, b)
	}
}

// ReadRequested handles a repeated-start read request while the
// register is already known (StateRegisterSet), entering Transmitting
// and returning the first byte of the reply payload.
func (s *Slave) ReadRequested() (byte, bool) {
	if s.state != StateRegisterSet && s.state != StateTransmitting {
		return 0, false
	}
	if s.state == StateRegisterSet {
		s.beginTransmit()
	}
	return s.nextTxByte()
}

func (s *Slave) beginTransmit() {
	_, _, readable, _ := widthFor(s.reg)
	if !readable {
		s.buf = nil
		s.state = StateTransmitting
		return
	}
	s.buf = encodeRead(s.dict, s.reg)
	s.state = StateTransmitting
}

func (s *Slave) nextTxByte() (byte, bool) {
	if len(s.buf) == 0 {
		return 0, false
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, true
}

// Stop handles a STOP condition: if a full write was accumulated,
// apply it to the dictionary, then return to Idle.
func (s *Slave) Stop() {
	if s.state == StateReceiving {
		applyWrite(s.dict, s.nmt, s.reg, s.buf)
	}
	s.state = StateIdle
	s.buf = nil
}

// BusError resets the slave to Idle on any bus error (timeout,
// overrun, arbitration-lost, NACK, framing), discarding any partial
// data, ported from i2c.rs's handle_error.
func (s *Slave) BusError() {
	s.state = StateIdle
	s.buf = nil
	if s.OnBusError != nil {
		s.OnBusError()
	}
}
