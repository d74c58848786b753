package motion

// AxisState is the subset of an axis's object-dictionary entry the
// motion controller needs to read and update each tick. It is defined
// here (rather than importing the objdict package's concrete type) so
// that motion has no dependency on objdict; objdict.AxisDictionary
// satisfies this interface instead, the usual Go way of avoiding an
// import cycle between a policy package and its data package.
type AxisState interface {
	Mode() AxisMode
	Enabled() bool

	TargetVelocity() float32
	ActualVelocity() float32
	SetActualVelocity(float32)

	TargetPosition() Position
	ActualPosition() Position
	SetActualPosition(Position)

	Acceleration() float32
	VelocityFeedbackControlEnabled() bool

	StandstillCurrent() float32
	AcceleratingCurrent() float32
	ConstantVelocityCurrent() float32

	VelocityGains() (p, s, d, max float32)
	PositionGains() (p, s, d, max float32)
}

// standstillEpsilon is the |output_frequency| threshold below which the
// axis is considered stopped for current-selection purposes, ported
// from motion_controller.rs's `output_frequency.abs() < 0.1` literal.
const standstillEpsilon = 0.1

// constantVelocityEpsilon is the tolerance used to detect that the
// ramp has converged on its target (no longer accelerating), ported
// from motion_controller.rs's `(output_frequency - axis_velocity_action).abs() < f32::EPSILON`
// (Rust's f32::EPSILON, the smallest representable step above 1.0).
const constantVelocityEpsilon = 1.1920929e-7

// AxisMotionController ties together one axis's encoder, ramp
// generator, PSD controllers, and step/current driver. Ported from
// original_source's AxisMotionController (shared/src/motion_controller.rs),
// split into the same two tick entry points the firmware calls at
// different rates: Control (the slower 100Hz feedback-control tick)
// and Ramp (the 1kHz step-frequency ramping tick).
type AxisMotionController struct {
	stepGen  *StepGenerator
	encoder  *Encoder
	ramp     *RampGenerator
	velocity *PSDController
	position *PSDController

	// velocityAction is axis_velocity_action: the target speed computed
	// by the last Control tick (closing the position loop if in
	// Position mode, and the velocity loop if feedback is enabled),
	// consumed by the next Ramp tick. Caching it here rather than
	// recomputing it in Ramp is what keeps the PSD loops sampling at
	// the control tick's 100Hz rate instead of the ramp tick's 1kHz.
	velocityAction float32
}

// NewAxisMotionController builds a controller over the given driver and
// encoder, ramping at rampFrequency Hz and running its PSD loops at
// controlPeriodSeconds (the control tick's period, in seconds).
func NewAxisMotionController(driver StepDriver, encoder *Encoder, rampFrequency, controlPeriodSeconds float32) *AxisMotionController {
	return &AxisMotionController{
		stepGen:  NewStepGenerator(driver),
		encoder:  encoder,
		ramp:     NewRampGenerator(rampFrequency),
		velocity: NewPSDController(0, 0, 0, 0, controlPeriodSeconds),
		position: NewPSDController(0, 0, 0, 0, controlPeriodSeconds),
	}
}

// Control runs the slower control tick (100Hz): sample the encoder
// into the dictionary's actual position, compute this tick's target
// velocity for the axis's mode, and run the velocity feedback loop if
// enabled, caching the result as axis_velocity_action for the next
// Ramp tick. Ported from motion_controller.rs's control(). When
// blocked is true (failsafe tripped, or NMT state is not Operational)
// or the axis is disabled, the target collapses to zero without
// touching the dictionary's target fields (so a recovering Operational
// transition resumes whatever the host last commanded).
func (a *AxisMotionController) Control(blocked bool, axis AxisState) {
	a.encoder.Sample()
	axis.SetActualPosition(a.encoder.GetPosition())

	targetVelocity := float32(0)
	if axis.Enabled() && !blocked {
		switch axis.Mode() {
		case ModePosition:
			p, s, d, maxOut := axis.PositionGains()
			a.position.SetGains(p, s, d, maxOut)
			target := axis.TargetPosition().GetRelativeRevolutions()
			actual := axis.ActualPosition().GetRelativeRevolutions()
			targetVelocity = a.position.Update(target - actual)
		default:
			targetVelocity = axis.TargetVelocity()
		}
	}

	if axis.VelocityFeedbackControlEnabled() {
		p, s, d, maxOut := axis.VelocityGains()
		a.velocity.SetGains(p, s, d, maxOut)
		a.velocityAction = a.velocity.Update(targetVelocity - axis.ActualVelocity())
	} else {
		a.velocityAction = targetVelocity
	}
}

// Ramp runs the fast ramp tick (1kHz): ramp the cached
// axis_velocity_action toward the step generator's output frequency,
// notify the encoder of any direction change, update the dictionary's
// actual velocity, and choose the coil current. Ported from
// motion_controller.rs's ramp(). When blocked, the cached action
// collapses to zero and the ramp generator takes the output toward it:
// a negative output frequency ramps up at the configured acceleration,
// while a positive one drops to zero in a single tick (the ramp's
// asymmetric diff < step test, see ramp.go).
func (a *AxisMotionController) Ramp(blocked bool, axis AxisState) {
	if blocked {
		a.velocityAction = 0
	}

	outputFrequency := a.ramp.Generate(a.velocityAction, axis.Acceleration())

	if DirectionOf(axis.ActualVelocity()) != DirectionOf(outputFrequency) {
		a.encoder.NotifyDirectionChanged(DirectionOf(outputFrequency))
	}

	if axis.VelocityFeedbackControlEnabled() {
		axis.SetActualVelocity(a.encoder.GetSpeed())
	} else {
		axis.SetActualVelocity(outputFrequency)
	}

	a.stepGen.SetFrequency(outputFrequency)

	magnitude := outputFrequency
	if magnitude < 0 {
		magnitude = -magnitude
	}
	switch {
	case magnitude < standstillEpsilon:
		a.stepGen.SetCurrent(axis.StandstillCurrent())
	case absf(outputFrequency-a.velocityAction) < constantVelocityEpsilon:
		a.stepGen.SetCurrent(axis.ConstantVelocityCurrent())
	default:
		a.stepGen.SetCurrent(axis.AcceleratingCurrent())
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
