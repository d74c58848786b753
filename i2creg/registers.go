package i2creg

import (
	"encoding/binary"
	"math"

	"sm4/motion"
	"sm4/objdict"
)

// encodeRead builds the reply payload for a master read of reg,
// returning nil for an unreadable or unknown register (the caller
// treats an empty buffer as "nothing to transmit").
func encodeRead(dict *objdict.PersistentObjectDictionary, reg byte) []byte {
	switch reg {
	case RegAxisSettings:
		return encodeAxisSettings(dict)
	case RegAxis1Velocity:
		return f32le(dict.Axis1().ActualVelocity())
	case RegAxis2Velocity:
		return f32le(dict.Axis2().ActualVelocity())
	case RegAxis1Position:
		return positionLE(dict.Axis1().ActualPosition())
	case RegAxis2Position:
		return positionLE(dict.Axis2().ActualPosition())
	case RegBothPosition:
		return append(positionLE(dict.Axis1().ActualPosition()), positionLE(dict.Axis2().ActualPosition())...)
	default:
		return nil
	}
}

// applyWrite applies an accumulated write payload to the dictionary.
// Malformed (wrong-length) writes are discarded per the "malformed
// frame" handling spec.md §5 applies uniformly across every protocol
// surface. Writing RegAxisSettings implicitly transitions NMT to
// Operational, ported from i2c.rs's handle_register_write.
func applyWrite(dict *objdict.PersistentObjectDictionary, nmt NMTOperationalSetter, reg byte, data []byte) {
	_, writeWidth, _, writable := widthFor(reg)
	if !writable || len(data) != writeWidth {
		return
	}

	switch reg {
	case RegAxisSettings:
		decodeAxisSettings(dict, data)
		nmt.GoToOperational()
	case RegAxis1Velocity:
		dict.Axis1().SetTargetVelocity(decodeF32(data))
	case RegAxis2Velocity:
		dict.Axis2().SetTargetVelocity(decodeF32(data))
	case RegAxis1Position:
		dict.Axis1().SetTargetPosition(decodePosition(dict.Axis1().ActualPosition().GetResolution(), data))
	case RegAxis2Position:
		dict.Axis2().SetTargetPosition(decodePosition(dict.Axis2().ActualPosition().GetResolution(), data))
	case RegBothVelocity:
		dict.Axis1().SetTargetVelocity(decodeF32(data[0:4]))
		dict.Axis2().SetTargetVelocity(decodeF32(data[4:8]))
	}
}

// encodeAxisSettings packs byte 0 = (axis1_mode & 0x0F) |
// ((axis2_mode & 0x0F) << 4), byte 1 similarly for the enabled flags,
// exactly as spec.md §4.J specifies.
func encodeAxisSettings(dict *objdict.PersistentObjectDictionary) []byte {
	b := make([]byte, 2)
	b[0] = byte(dict.Axis1().Mode())&0x0F | (byte(dict.Axis2().Mode())&0x0F)<<4
	b[1] = boolNibble(dict.Axis1().Enabled()) | boolNibble(dict.Axis2().Enabled())<<4
	return b
}

func decodeAxisSettings(dict *objdict.PersistentObjectDictionary, data []byte) {
	dict.Axis1().SetMode(motion.AxisMode(data[0] & 0x0F))
	dict.Axis2().SetMode(motion.AxisMode((data[0] >> 4) & 0x0F))
	dict.Axis1().SetEnabled(data[1]&0x0F != 0)
	dict.Axis2().SetEnabled((data[1]>>4)&0x0F != 0)
}

func boolNibble(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func f32le(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func decodeF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func positionLE(p motion.Position) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(p.GetRevolutions()))
	binary.LittleEndian.PutUint32(b[4:8], p.GetAngle())
	return b
}

func decodePosition(resolution uint32, b []byte) motion.Position {
	rev := int32(binary.LittleEndian.Uint32(b[0:4]))
	angle := binary.LittleEndian.Uint32(b[4:8])
	return motion.NewPosition(resolution, rev, angle)
}
