// Package canbus is the host-side counterpart to the firmware's
// canopen package: it mirrors one board's observable CANopen state
// locally, drives the board by synthesising RxPDO1-4 in response to
// SYNC, and nudges the board back to Operational whenever a heartbeat
// reports anything else. Ported from
// original_source/Software/sm4-controller/src/canopen_backend.rs's
// CANOpenBackend.
package canbus

import (
	"sync"

	"sm4/canopen"
	"sm4/motion"
)

// Bus is the transport Mirror drives frames over; SocketCAN
// (socketcan_linux.go) is the production implementation, satisfied
// structurally so tests can substitute an in-memory fake.
type Bus interface {
	Send(canopen.Frame) error
	Receive() (canopen.Frame, error)
}

// AxisState is the host-side mirror of one axis's observable and
// commandable fields.
type AxisState struct {
	Enabled        bool
	Mode           motion.AxisMode
	ActualVelocity float32
	TargetVelocity float32
	ActualPosition motion.Position
	TargetPosition motion.Position
}

// State is the whole board's mirrored state, guarded by Mirror's mutex.
type State struct {
	NMTState    motion.NMTState
	Voltage     float32
	Temperature float32
	Axis1       AxisState
	Axis2       AxisState
}

// Mirror owns a background goroutine reading frames from a Bus,
// updating a local State under a mutex, and replying to SYNC/heartbeat
// traffic. All of its setters only mutate the mirror; the wire side
// happens the next time SYNC arrives, exactly as the original's
// "mutators only touch local state" design states.
type Mirror struct {
	id         uint16
	resolution uint32
	bus        Bus

	mu    sync.Mutex
	state State

	stop chan struct{}
}

// NewMirror starts the background receive loop against bus for the
// node at id, using resolution for PositionPDO decoding.
func NewMirror(id uint16, resolution uint32, bus Bus) *Mirror {
	m := &Mirror{
		id:         id,
		resolution: resolution,
		bus:        bus,
		state: State{
			Axis1: AxisState{TargetPosition: motion.ZeroPosition(resolution), ActualPosition: motion.ZeroPosition(resolution)},
			Axis2: AxisState{TargetPosition: motion.ZeroPosition(resolution), ActualPosition: motion.ZeroPosition(resolution)},
		},
		stop: make(chan struct{}),
	}
	go m.run()
	return m
}

// Close signals the background receive loop to stop. It does not wait
// for the loop to notice: a blocking Bus.Receive only unblocks when its
// transport is closed, which Mirror does not own, so the caller that
// opened the Bus is responsible for closing it (which also unblocks
// this goroutine) after calling Close.
func (m *Mirror) Close() {
	close(m.stop)
}

func (m *Mirror) run() {
	for {
		select {
		case <-m.stop:
			return
		default:
		}

		f, err := m.bus.Receive()
		if err != nil {
			continue
		}

		switch canopen.ParseFunctionCode(f.ID) {
		case canopen.FuncSync:
			m.sendRxPDOs()
		case canopen.FuncTxPDO1:
			m.handleTxPDO1(f)
		case canopen.FuncTxPDO2:
			m.handleTxPDO2(f)
		case canopen.FuncTxPDO3:
			m.handleTxPDO3(f)
		case canopen.FuncTxPDO4:
			m.handleTxPDO4(f)
		case canopen.FuncNMTNodeMonitoring:
			m.handleHeartbeat(f)
		}
	}
}

func (m *Mirror) sendRxPDOs() {
	m.mu.Lock()
	s := m.state
	m.mu.Unlock()

	frames := [4]canopen.Frame{
		canopen.EncodeModeEnablePDO(canopen.ModeEnablePDO{
			Axis1Mode: s.Axis1.Mode, Axis2Mode: s.Axis2.Mode,
			Axis1Enabled: s.Axis1.Enabled, Axis2Enabled: s.Axis2.Enabled,
		}),
		canopen.EncodeVelocityPDO(s.Axis1.TargetVelocity, s.Axis2.TargetVelocity),
		canopen.EncodePositionPDO(s.Axis1.TargetPosition),
		canopen.EncodePositionPDO(s.Axis2.TargetPosition),
	}
	codes := [4]canopen.FunctionCode{canopen.FuncRxPDO1, canopen.FuncRxPDO2, canopen.FuncRxPDO3, canopen.FuncRxPDO4}
	for i, f := range frames {
		f.ID = canopen.FrameID(codes[i], m.id)
		_ = m.bus.Send(f) // a send failure here is host-local and non-fatal; the next SYNC retries
	}
}

func (m *Mirror) handleTxPDO1(f canopen.Frame) {
	voltage, temperature := canopen.DecodeTxPDO1(f.Data)
	m.mu.Lock()
	m.state.Voltage = voltage
	m.state.Temperature = temperature
	m.mu.Unlock()
}

func (m *Mirror) handleTxPDO2(f canopen.Frame) {
	a1, a2 := canopen.DecodeVelocityPDO(f.Data)
	m.mu.Lock()
	m.state.Axis1.ActualVelocity = a1
	m.state.Axis2.ActualVelocity = a2
	m.mu.Unlock()
}

func (m *Mirror) handleTxPDO3(f canopen.Frame) {
	p := canopen.DecodePositionPDO(m.resolution, f.Data)
	m.mu.Lock()
	m.state.Axis1.ActualPosition = p
	m.mu.Unlock()
}

func (m *Mirror) handleTxPDO4(f canopen.Frame) {
	p := canopen.DecodePositionPDO(m.resolution, f.Data)
	m.mu.Lock()
	m.state.Axis2.ActualPosition = p
	m.mu.Unlock()
}

// handleHeartbeat records the reported NMT state and, if it is
// anything other than Operational, sends an NMT Node Control command
// coercing the board back to Operational — ported from
// canopen_backend.rs's NMTReceived handler.
func (m *Mirror) handleHeartbeat(f canopen.Frame) {
	if f.Length < 1 {
		return
	}
	state := nmtStateFromWire(f.Data[0])

	m.mu.Lock()
	m.state.NMTState = state
	m.mu.Unlock()

	if state != motion.NMTOperational {
		var cmd canopen.Frame
		cmd.ID = canopen.FrameID(canopen.FuncNMTNodeControl, 0)
		cmd.Length = 2
		cmd.Data[0] = 0x01 // Operational
		cmd.Data[1] = byte(m.id)
		_ = m.bus.Send(cmd)
	}
}

func nmtStateFromWire(b byte) motion.NMTState {
	switch b {
	case 0x04:
		return motion.NMTStopped
	case 0x05:
		return motion.NMTOperational
	case 0x7F:
		return motion.NMTPreOperational
	default:
		return motion.NMTBootUp
	}
}

// State returns a snapshot of the mirrored state.
func (m *Mirror) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetAxis1TargetVelocity mutates the local mirror only; the wire side
// happens on the next SYNC.
func (m *Mirror) SetAxis1TargetVelocity(v float32) {
	m.mu.Lock()
	m.state.Axis1.TargetVelocity = v
	m.mu.Unlock()
}

// SetAxis2TargetVelocity mutates the local mirror only.
func (m *Mirror) SetAxis2TargetVelocity(v float32) {
	m.mu.Lock()
	m.state.Axis2.TargetVelocity = v
	m.mu.Unlock()
}

// SetAxis1TargetPosition mutates the local mirror only.
func (m *Mirror) SetAxis1TargetPosition(p motion.Position) {
	m.mu.Lock()
	m.state.Axis1.TargetPosition = p
	m.mu.Unlock()
}

// SetAxis2TargetPosition mutates the local mirror only.
func (m *Mirror) SetAxis2TargetPosition(p motion.Position) {
	m.mu.Lock()
	m.state.Axis2.TargetPosition = p
	m.mu.Unlock()
}

// SetAxis1Enabled mutates the local mirror only.
func (m *Mirror) SetAxis1Enabled(enabled bool) {
	m.mu.Lock()
	m.state.Axis1.Enabled = enabled
	m.mu.Unlock()
}

// SetAxis2Enabled mutates the local mirror only.
func (m *Mirror) SetAxis2Enabled(enabled bool) {
	m.mu.Lock()
	m.state.Axis2.Enabled = enabled
	m.mu.Unlock()
}

// SetAxis1Mode mutates the local mirror only.
func (m *Mirror) SetAxis1Mode(mode motion.AxisMode) {
	m.mu.Lock()
	m.state.Axis1.Mode = mode
	m.mu.Unlock()
}

// SetAxis2Mode mutates the local mirror only.
func (m *Mirror) SetAxis2Mode(mode motion.AxisMode) {
	m.mu.Lock()
	m.state.Axis2.Mode = mode
	m.mu.Unlock()
}
