// Package bench masters the board's I²C slave register protocol
// (sm4/i2creg) from a Linux host over an i2c-dev adapter, for
// bring-up and bench testing without a CAN interface. Grounded on the
// register-address/Tx(w,r) shape of periph.io's adxl345 driver
// (device.Dev{c: &i2c.Dev{Bus, Addr}}, Read/Write over c.Tx), applied
// to the register map package i2creg already defines rather than a new
// driver, since original_source has no host-side I²C tooling of its
// own — sm4-controller only ever speaks CANopen.
package bench

import (
	"encoding/binary"
	"fmt"
	"math"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"

	"sm4/i2creg"
	"sm4/motion"
)

// Bench masters one board's I²C register interface over a periph.io
// i2c.Bus.
type Bench struct {
	c conn.Conn
}

// Open wraps an already-opened periph.io i2c.Bus (e.g. from
// periph.io/x/conn/v3/i2c/i2creg.Open("1") after periph.io/x/host/v3's
// host.Init()) addressed at the board's fixed slave address.
func Open(bus i2c.Bus) *Bench {
	return newBench(&i2c.Dev{Bus: bus, Addr: i2creg.SlaveAddress})
}

func newBench(c conn.Conn) *Bench {
	return &Bench{c: c}
}

// readRegister issues a master-write(reg) followed by a repeated-start
// read of width bytes, mirroring the wire sequence i2creg.Slave
// expects from handleRegisterRead.
func (b *Bench) readRegister(reg byte, width int) ([]byte, error) {
	rx := make([]byte, width)
	if err := b.c.Tx([]byte{reg}, rx); err != nil {
		return nil, fmt.Errorf("bench: read register %#x: %w", reg, err)
	}
	return rx, nil
}

// writeRegister issues a single master-write(reg, data...) transaction.
func (b *Bench) writeRegister(reg byte, data []byte) error {
	if err := b.c.Tx(append([]byte{reg}, data...), nil); err != nil {
		return fmt.Errorf("bench: write register %#x: %w", reg, err)
	}
	return nil
}

// AxisSettings is the host-side decode of register 0x10.
type AxisSettings struct {
	Axis1Mode    motion.AxisMode
	Axis2Mode    motion.AxisMode
	Axis1Enabled bool
	Axis2Enabled bool
}

// ReadAxisSettings reads register 0x10. Unlike a write to this
// register, a read leaves the board's NMT state unchanged.
func (b *Bench) ReadAxisSettings() (AxisSettings, error) {
	data, err := b.readRegister(i2creg.RegAxisSettings, 2)
	if err != nil {
		return AxisSettings{}, err
	}
	return AxisSettings{
		Axis1Mode:    motion.AxisMode(data[0] & 0x0F),
		Axis2Mode:    motion.AxisMode((data[0] >> 4) & 0x0F),
		Axis1Enabled: data[1]&0x0F != 0,
		Axis2Enabled: (data[1]>>4)&0x0F != 0,
	}, nil
}

// WriteAxisSettings writes register 0x10, transitioning the board to
// Operational.
func (b *Bench) WriteAxisSettings(s AxisSettings) error {
	var data [2]byte
	data[0] = byte(s.Axis1Mode&0x0F) | byte(s.Axis2Mode&0x0F)<<4
	data[1] = boolNibble(s.Axis1Enabled) | boolNibble(s.Axis2Enabled)<<4
	return b.writeRegister(i2creg.RegAxisSettings, data[:])
}

func boolNibble(enabled bool) byte {
	if enabled {
		return 0x01
	}
	return 0x00
}

// ReadAxisVelocity reads the actual velocity of axis 1 or 2 (register
// 0x21/0x22), in revolutions per second.
func (b *Bench) ReadAxisVelocity(axis int) (float32, error) {
	reg, err := velocityRegister(axis)
	if err != nil {
		return 0, err
	}
	data, err := b.readRegister(reg, 4)
	if err != nil {
		return 0, err
	}
	return decodeF32(data), nil
}

// WriteAxisVelocity writes the target velocity of axis 1 or 2.
func (b *Bench) WriteAxisVelocity(axis int, rps float32) error {
	reg, err := velocityRegister(axis)
	if err != nil {
		return err
	}
	return b.writeRegister(reg, f32le(rps))
}

// WriteBothVelocity writes both axes' target velocities in a single
// write-only transaction over register 0x40, the fast path the
// firmware's CANopen RxPDO2 handler also exercises.
func (b *Bench) WriteBothVelocity(axis1, axis2 float32) error {
	data := append(f32le(axis1), f32le(axis2)...)
	return b.writeRegister(i2creg.RegBothVelocity, data)
}

// ReadAxisPosition reads the actual position of axis 1 or 2 (register
// 0x31/0x32): whole revolutions plus a sub-revolution angle scaled by
// resolution counts per revolution.
func (b *Bench) ReadAxisPosition(axis int, resolution uint32) (motion.Position, error) {
	reg, err := positionRegister(axis)
	if err != nil {
		return motion.Position{}, err
	}
	data, err := b.readRegister(reg, 8)
	if err != nil {
		return motion.Position{}, err
	}
	return decodePosition(resolution, data), nil
}

// ReadBothPosition reads both axes' positions in one read-only
// transaction over register 0x50.
func (b *Bench) ReadBothPosition(resolution uint32) (axis1, axis2 motion.Position, err error) {
	data, err := b.readRegister(i2creg.RegBothPosition, 16)
	if err != nil {
		return motion.Position{}, motion.Position{}, err
	}
	return decodePosition(resolution, data[:8]), decodePosition(resolution, data[8:]), nil
}

func velocityRegister(axis int) (byte, error) {
	switch axis {
	case 1:
		return i2creg.RegAxis1Velocity, nil
	case 2:
		return i2creg.RegAxis2Velocity, nil
	default:
		return 0, fmt.Errorf("bench: invalid axis %d, want 1 or 2", axis)
	}
}

func positionRegister(axis int) (byte, error) {
	switch axis {
	case 1:
		return i2creg.RegAxis1Position, nil
	case 2:
		return i2creg.RegAxis2Position, nil
	default:
		return 0, fmt.Errorf("bench: invalid axis %d, want 1 or 2", axis)
	}
}

func f32le(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}

func decodeF32(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func decodePosition(resolution uint32, data []byte) motion.Position {
	revolutions := int32(binary.LittleEndian.Uint32(data[0:4]))
	angle := binary.LittleEndian.Uint32(data[4:8])
	return motion.NewPosition(resolution, revolutions, angle)
}
