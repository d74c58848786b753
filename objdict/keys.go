package objdict

// ObjectIndex is the CANopen SDO index addressing one of this node's
// three addressable objects: the scalar environment readings, and the
// two per-axis objects. Ported from the dispatch `Key::parse` performs
// in original_source/.../protocol/canopen.rs's update_object_dictionary.
type ObjectIndex uint16

const (
	IndexEnvironment ObjectIndex = 0x2000
	IndexAxis1       ObjectIndex = 0x2100
	IndexAxis2       ObjectIndex = 0x2200
)

// Environment subindexes.
const (
	SubBatteryVoltage uint8 = 0x00
	SubTemperature    uint8 = 0x01
)

// AxisKey names every SDO subindex an axis object exposes. Ported from
// the per-subindex match in update_axis_dictionary /
// read_object_dictionary.
type AxisKey uint8

const (
	KeyMode AxisKey = iota + 1
	KeyEnabled
	KeyTargetVelocity
	KeyActualVelocity // read-only
	KeyTargetPositionRevolutions
	KeyTargetPositionAngle
	KeyActualPositionRevolutions // read-only
	KeyActualPositionAngle       // read-only
	KeyAcceleration
	KeyVelocityFeedbackEnabled
	KeyStandstillCurrent
	KeyAcceleratingCurrent
	KeyConstantVelocityCurrent
	KeyVelocityP
	KeyVelocityS
	KeyVelocityD
	KeyVelocityMax
	KeyPositionP
	KeyPositionS
	KeyPositionD
	KeyPositionMax
)

// ParseAxisKey converts a raw SDO subindex to an AxisKey, reporting
// whether it names a known field. Unknown subindexes are logged and
// the SDO request discarded by the caller (spec.md §7), not answered
// with a wire-level abort.
func ParseAxisKey(subindex uint8) (AxisKey, bool) {
	k := AxisKey(subindex)
	if k < KeyMode || k > KeyPositionMax {
		return 0, false
	}
	return k, true
}

// ReadOnly reports whether writes to this field must be discarded.
// Ported from the RO fields in update_axis_dictionary, which log
// "Writing to ... is forbidden" and drop the write without an error
// response on the wire (spec.md §9's "SDO write to RO field still
// ACKs" bug, preserved as specified).
func (k AxisKey) ReadOnly() bool {
	switch k {
	case KeyActualVelocity, KeyActualPositionRevolutions, KeyActualPositionAngle:
		return true
	default:
		return false
	}
}

// Persistent reports whether a write to this field should also be
// written through to the flash store. Ported from the field list
// persistent_dictionary.rs's PersistentStoreAxisDictionary wraps;
// fields not in this list (Mode, Enabled, TargetVelocity,
// TargetPosition halves) are runtime-only.
func (k AxisKey) Persistent() bool {
	switch k {
	case KeyAcceleration, KeyVelocityFeedbackEnabled,
		KeyStandstillCurrent, KeyAcceleratingCurrent, KeyConstantVelocityCurrent,
		KeyVelocityP, KeyVelocityS, KeyVelocityD, KeyVelocityMax,
		KeyPositionP, KeyPositionS, KeyPositionD, KeyPositionMax:
		return true
	default:
		return false
	}
}

// storageKey returns the flash-store key for this field on the given
// axis (1 or 2). Ported from Key::for_axis: the same logical field
// needs a distinct flash key per axis so both axes' persisted values
// coexist in one store.
func (k AxisKey) storageKey(axis int) uint16 {
	return uint16(k)<<1 | uint16(axis&1)
}
