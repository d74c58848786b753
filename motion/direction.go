package motion

// Direction is the rotational direction of an axis, ported from
// original_source/Software/sm4-shared/src/lib.rs.
type Direction uint8

const (
	// Clockwise is the default direction, matching the Rust Default impl.
	Clockwise Direction = iota
	CounterClockwise
)

// Opposite returns the reverse of the direction.
//
// original_source's Direction::opposite() has a bug: its match arm for
// CounterClockwise returns CounterClockwise instead of Clockwise, so the
// function is not actually an involution for that input. spec.md §4.A
// and §9 call for the corrected behaviour here rather than a literal
// port of the bug; see DESIGN.md's Open Questions section.
func (d Direction) Opposite() Direction {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

// DirectionOf returns Clockwise iff v > 0, else CounterClockwise,
// ported from Direction::from(v: f32) (spec.md §4.A).
func DirectionOf(v float32) Direction {
	if v > 0 {
		return Clockwise
	}
	return CounterClockwise
}

// Multiplier returns the signed multiplier used to turn an unsigned
// magnitude into a signed delta: +1 for Clockwise, -1 for
// CounterClockwise, ported from Direction::multiplier().
func (d Direction) Multiplier() int32 {
	if d == Clockwise {
		return 1
	}
	return -1
}

func (d Direction) String() string {
	if d == Clockwise {
		return "Clockwise"
	}
	return "CounterClockwise"
}
