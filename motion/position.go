// Package motion implements the dual-axis motion primitives: fixed-
// resolution position arithmetic, the trapezoidal ramp generator, the
// PSD velocity/position controller, the step-counter encoder, and the
// per-axis motion controller that ties them together.
//
// Ported from original_source/Software/sm4-shared/src/models/position.rs
// and original_source/Software/sm4-firmware/src/{ramp,step_counter}.rs.
package motion

// Position is a fixed-point angular position expressed as whole
// revolutions plus a sub-revolution angle counted in increments of
// 1/Resolution of a turn. Resolution is carried as a field rather than
// a Go generic const parameter (Go does not allow a numeric value as a
// type parameter the way Rust's `const RESOLUTION: u32` does); callers
// that mix positions of different resolutions is a programming error,
// the same way it would fail to typecheck in the original Rust.
type Position struct {
	Resolution uint32
	Revolutions int32
	Angle       uint32
}

// ZeroPosition returns the zero position at the given resolution.
func ZeroPosition(resolution uint32) Position {
	return Position{Resolution: resolution}
}

// NewPosition builds a position from a revolution count and an angle,
// applying the simple (non-canonicalizing) carry from the Rust `new`
// constructor: revolutions + angle/resolution, angle%resolution. Unlike
// fromRaw below, this does not handle a negative angle input — callers
// that need full canonicalization of a signed angle should use
// fromRaw directly, the same asymmetry the original Rust API has
// between `new` (public) and `from_raw` (private, used by the
// arithmetic operators).
func NewPosition(resolution uint32, revolutions int32, angle uint32) Position {
	return Position{
		Resolution:  resolution,
		Revolutions: revolutions + int32(angle/resolution),
		Angle:       angle % resolution,
	}
}

// GetResolution returns the position's resolution.
func (p Position) GetResolution() uint32 { return p.Resolution }

// GetRevolutions returns the whole-revolution count.
func (p Position) GetRevolutions() int32 { return p.Revolutions }

// GetAngle returns the sub-revolution angle in increments.
func (p Position) GetAngle() uint32 { return p.Angle }

// GetIncrements returns the position flattened to a single signed
// increment count: revolutions*resolution + angle.
func (p Position) GetIncrements() int64 {
	return int64(p.Revolutions)*int64(p.Resolution) + int64(p.Angle)
}

// GetRelativeRevolutions returns the position as a float number of
// revolutions (revolutions + angle/resolution).
func (p Position) GetRelativeRevolutions() float32 {
	return float32(p.Revolutions) + float32(p.Angle)/float32(p.Resolution)
}

// fromRaw canonicalizes a (revolutions, angle) pair where angle may be
// negative or out of [0, resolution), folding the overflow/underflow
// into revolutions. Ported verbatim from Position::from_raw in
// position.rs: first fold any whole-resolution multiples of angle into
// revolutions, then fix up a still-negative remainder by borrowing one
// revolution.
func fromRaw(resolution uint32, revolutions int32, angle int32) Position {
	if abs32(angle) >= int32(resolution) {
		revolutions += sign32(angle) * (abs32(angle) / int32(resolution))
		angle %= int32(resolution)
	}
	if angle < 0 {
		revolutions -= 1
		angle += int32(resolution)
	}
	return Position{Resolution: resolution, Revolutions: revolutions, Angle: uint32(angle)}
}

// AddIncrements adds a signed increment count to the position in place,
// ported from Position's AddAssign<i32>: split rhs into a whole-
// revolution part and an angle part, then re-canonicalize via fromRaw.
func (p *Position) AddIncrements(rhs int32) {
	addedRevolutions := rhs / int32(p.Resolution)
	addedAngle := rhs % int32(p.Resolution)
	result := fromRaw(p.Resolution, p.Revolutions+addedRevolutions, int32(p.Angle)+addedAngle)
	p.Revolutions = result.Revolutions
	p.Angle = result.Angle
}

// SubIncrements subtracts a signed increment count, ported from
// SubAssign<i32> (`*self += -rhs`).
func (p *Position) SubIncrements(rhs int32) {
	p.AddIncrements(-rhs)
}

// Add returns the sum of two positions of the same resolution, ported
// from Add<&Position>: combine revolutions and angles independently,
// then canonicalize via fromRaw.
func (p Position) Add(other Position) Position {
	return fromRaw(p.Resolution, p.Revolutions+other.Revolutions, int32(p.Angle)+int32(other.Angle))
}

// Sub returns the difference of two positions of the same resolution,
// ported from Sub<&Position>.
func (p Position) Sub(other Position) Position {
	return fromRaw(p.Resolution, p.Revolutions-other.Revolutions, int32(p.Angle)-int32(other.Angle))
}

// AddPosition adds another position in place, ported from
// AddAssign<&Position>.
func (p *Position) AddPosition(other Position) {
	result := p.Add(other)
	p.Revolutions = result.Revolutions
	p.Angle = result.Angle
}

// SubPosition subtracts another position in place, ported from
// SubAssign<&Position>.
func (p *Position) SubPosition(other Position) {
	result := p.Sub(other)
	p.Revolutions = result.Revolutions
	p.Angle = result.Angle
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
