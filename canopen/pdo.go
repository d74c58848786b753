package canopen

import (
	"math"

	"sm4/motion"
)

// EncodeTxPDO1 serialises the environment PDO: battery voltage in
// millivolts and temperature in tenths of a degree, both u16 LE.
// Ported from original_source's EnvironmentPDO::serialize. Exported so
// the host mirror (host/canbus) can decode what it receives without
// duplicating the wire layout.
func EncodeTxPDO1(batteryVoltage, temperature float32) Frame {
	mV := uint16(batteryVoltage * 1000)
	tenthsC := uint16(temperature * 10)
	var f Frame
	f.Length = 4
	f.Data[0] = byte(mV)
	f.Data[1] = byte(mV >> 8)
	f.Data[2] = byte(tenthsC)
	f.Data[3] = byte(tenthsC >> 8)
	return f
}

// DecodeTxPDO1 parses an environment PDO payload back to volts and
// degrees Celsius.
func DecodeTxPDO1(d [8]byte) (batteryVoltage, temperature float32) {
	mV := uint16(d[0]) | uint16(d[1])<<8
	tenthsC := uint16(d[2]) | uint16(d[3])<<8
	return float32(mV) / 1000, float32(tenthsC) / 10
}

// EncodeVelocityPDO serialises a VelocityPDO (TxPDO2/RxPDO2): two f32
// rev/s values, axis1 then axis2.
func EncodeVelocityPDO(axis1RPS, axis2RPS float32) Frame {
	var f Frame
	f.Length = 8
	putF32(f.Data[0:4], axis1RPS)
	putF32(f.Data[4:8], axis2RPS)
	return f
}

// DecodeVelocityPDO parses a VelocityPDO payload.
func DecodeVelocityPDO(d [8]byte) (axis1RPS, axis2RPS float32) {
	return getF32(d[0:4]), getF32(d[4:8])
}

// EncodePositionPDO serialises a PositionPDO (TxPDO3/RxPDO3 for axis 1,
// TxPDO4/RxPDO4 for axis 2): i32 revolutions then u32 angle, both LE.
func EncodePositionPDO(p motion.Position) Frame {
	var f Frame
	f.Length = 8
	putI32(f.Data[0:4], p.GetRevolutions())
	putU32(f.Data[4:8], p.GetAngle())
	return f
}

// DecodePositionPDO parses a PositionPDO payload at the given encoder
// resolution.
func DecodePositionPDO(resolution uint32, d [8]byte) motion.Position {
	rev := getI32(d[0:4])
	angle := getU32(d[4:8])
	return motion.NewPosition(resolution, rev, angle)
}

// axisModeBit packs an AxisMode to the single bit RxPDO1 uses: 0 for
// Velocity, 1 for Position.
func axisModeBit(m motion.AxisMode) byte {
	if m == motion.ModePosition {
		return 1
	}
	return 0
}

func axisModeFromBit(b byte) motion.AxisMode {
	if b&0x1 != 0 {
		return motion.ModePosition
	}
	return motion.ModeVelocity
}

// ModeEnablePDO is the decoded form of RxPDO1: per-axis mode and enable
// flags. Ported from original_source's ModeEnablePDO.
type ModeEnablePDO struct {
	Axis1Mode    motion.AxisMode
	Axis2Mode    motion.AxisMode
	Axis1Enabled bool
	Axis2Enabled bool
}

// DecodeModeEnablePDO parses RxPDO1's 2-byte payload: byte 0 bit 0 is
// axis1 mode, bit 4 is axis2 mode; byte 1 bit 0 is axis1 enabled, bit 1
// is axis2 enabled.
func DecodeModeEnablePDO(d [8]byte) ModeEnablePDO {
	return ModeEnablePDO{
		Axis1Mode:    axisModeFromBit(d[0]),
		Axis2Mode:    axisModeFromBit(d[0] >> 4),
		Axis1Enabled: d[1]&0x1 != 0,
		Axis2Enabled: d[1]&0x2 != 0,
	}
}

// EncodeModeEnablePDO serialises a ModeEnablePDO, used by the host
// mirror to synthesise RxPDO1 from mutator calls.
func EncodeModeEnablePDO(p ModeEnablePDO) Frame {
	var f Frame
	f.Length = 2
	f.Data[0] = axisModeBit(p.Axis1Mode) | axisModeBit(p.Axis2Mode)<<4
	if p.Axis1Enabled {
		f.Data[1] |= 0x1
	}
	if p.Axis2Enabled {
		f.Data[1] |= 0x2
	}
	return f
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putI32(b []byte, v int32) { putU32(b, uint32(v)) }
func getI32(b []byte) int32    { return int32(getU32(b)) }

func putF32(b []byte, v float32) { putU32(b, math.Float32bits(v)) }
func getF32(b []byte) float32    { return math.Float32frombits(getU32(b)) }
