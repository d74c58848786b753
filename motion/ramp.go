package motion

// Acceleration-limited ramping only needs a sign and a magnitude, both
// cheap enough not to need tinymath here; tinymath is reserved for the
// PSD controller's sqrt-free clamp helpers (see psd.go) where it
// actually saves pulling in libm.

// RampGenerator produces a smoothly-changing speed setpoint that moves
// toward a target speed at a bounded acceleration, so that a sudden
// target-velocity command does not snap the stepper's output frequency
// instantaneously. Ported from original_source's TrapRampGen (ramp.rs),
// generalized to take the target acceleration per call the way
// spec.md's §4.D signature does, rather than baking a fixed acceleration
// into the struct the way the older ramp.rs does.
type RampGenerator struct {
	currentSpeed        float32
	generationFrequency float32
}

// NewRampGenerator builds a ramp generator that is called at
// generationFrequency Hz (spec.md's ramp tick rate).
func NewRampGenerator(generationFrequency float32) *RampGenerator {
	return &RampGenerator{generationFrequency: generationFrequency}
}

// CurrentSpeed returns the generator's current speed setpoint.
func (r *RampGenerator) CurrentSpeed() float32 { return r.currentSpeed }

// Reset forces the generator's current speed setpoint to the given
// value, with no ramping.
func (r *RampGenerator) Reset(speed float32) { r.currentSpeed = speed }

// Generate advances the ramp by one tick toward targetSpeed at the
// given acceleration (in speed units per second) and returns the new
// current speed.
//
// The convergence test is intentionally asymmetric: it compares the
// raw signed difference against the step size, not its absolute value.
// This is ported as-is from ramp.rs's `generate` — spec.md §9 calls
// this out explicitly as "specified as-is, do not guess a symmetric
// fix". Because diff < step is true whenever diff is negative (the
// target is below the current speed) regardless of step's magnitude,
// decelerating moves snap to the target in one tick rather than ramping
// down; only increasing moves actually ramp.
func (r *RampGenerator) Generate(targetSpeed, acceleration float32) float32 {
	step := acceleration / r.generationFrequency
	diff := targetSpeed - r.currentSpeed
	if diff < step {
		r.currentSpeed = targetSpeed
	} else {
		r.currentSpeed += signOf(diff) * step
	}
	return r.currentSpeed
}

func signOf(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
