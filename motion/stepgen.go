package motion

// StepDriver abstracts a stepper motor driver IC's two externally
// controllable quantities: the step-pulse output frequency and the
// coil current reference. Ported from the StepperDriver trait in
// original_source/Software/sm4-shared/src/lib.rs.
type StepDriver interface {
	// SetOutputFrequency sets the step-pulse generator's output. The
	// sign of rps carries direction (negative flips the DirPin), per
	// spec.md §4.C; the implementation derives its own unsigned step
	// frequency and dir-pin level from it.
	SetOutputFrequency(rps float32)
	// SetCurrent sets the coil current reference in amps.
	SetCurrent(current float32)
}

// StepGenerator drives a single axis's step and direction outputs from
// a target frequency, the way the donor's core/stepper.go Stepper
// reloads its StepTimer on every fired tick. Unlike the donor's
// Stepper, this does not queue discrete moves ahead of time (the
// donor's 32-entry QueueMove ring buffer): spec.md's step generator is
// purely frequency-driven, reloaded every ramp tick from the ramp
// generator's current speed, so there is no move queue to adapt. It
// owns no timer either: reprogramming the step-pulse hardware is left
// entirely to the StepDriver.
type StepGenerator struct {
	driver    StepDriver
	direction Direction
	frequency float32
}

// NewStepGenerator wraps a StepDriver.
func NewStepGenerator(driver StepDriver) *StepGenerator {
	return &StepGenerator{driver: driver, direction: Clockwise}
}

// SetFrequency reprograms the step output frequency, forwarding speed
// unchanged (sign included) to the driver, which derives its own
// dir-pin level and unsigned step frequency from it (spec.md §4.C).
// direction/frequency are cached for introspection only.
func (g *StepGenerator) SetFrequency(speed float32) {
	g.direction = DirectionOf(speed)
	magnitude := speed
	if speed < 0 {
		magnitude = -speed
	}
	g.frequency = magnitude
	g.driver.SetOutputFrequency(speed)
}

// Direction returns the generator's currently-applied output direction.
func (g *StepGenerator) Direction() Direction { return g.direction }

// Frequency returns the generator's currently-applied output
// frequency magnitude.
func (g *StepGenerator) Frequency() float32 { return g.frequency }

// SetCurrent forwards to the underlying driver's current reference.
func (g *StepGenerator) SetCurrent(current float32) {
	g.driver.SetCurrent(current)
}
