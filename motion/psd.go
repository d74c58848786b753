package motion

import "github.com/orsinium-labs/tinymath"

// PSDController is a discrete-time P + integrated-sum + D controller,
// used for both the velocity-feedback and position-feedback control
// loops. "S" (sum) rather than "I" (integral) matches the original
// firmware's naming. Ported from original_source's
// shared/src/psd.rs PSDController, including its sampling-period
// scaling of the sum and derivative terms (`sum += error * Ts`,
// `derivative / Ts`) — dropping Ts collapses the loop's effective gain
// by the tick rate, so it is carried here as a field set at
// construction rather than folded into the gains.
type PSDController struct {
	p, s, d        float32
	maxOutput      float32
	samplingPeriod float32 // seconds

	integralSum float32
	lastError   float32
}

// NewPSDController builds a controller with the given P/S/D gains,
// output clamp, and sampling period in seconds (the rate at which
// Update is called).
func NewPSDController(p, s, d, maxOutput, samplingPeriod float32) *PSDController {
	return &PSDController{p: p, s: s, d: d, maxOutput: maxOutput, samplingPeriod: samplingPeriod}
}

// SetGains updates the controller's tunables in place (used when a
// persistent-store SDO write changes a gain at runtime).
func (c *PSDController) SetGains(p, s, d, maxOutput float32) {
	c.p, c.s, c.d, c.maxOutput = p, s, d, maxOutput
}

// Reset clears the integrator and derivative history, used when a mode
// switch or a failsafe trip would otherwise produce a discontinuous
// kick from accumulated error.
func (c *PSDController) Reset() {
	c.integralSum = 0
	c.lastError = 0
}

// Update computes one control step given the current error
// (setpoint - actual) and returns the clamped output. The integral sum
// is clamped to the same output range as the final result, so a
// long-saturated error cannot wind the integrator up past what a single
// tick's output range could ever unwind (anti-windup).
func (c *PSDController) Update(errValue float32) float32 {
	c.integralSum += errValue * c.samplingPeriod
	c.integralSum = clamp(c.integralSum, -c.maxOutput, c.maxOutput)

	derivative := (errValue - c.lastError) / c.samplingPeriod
	c.lastError = errValue

	output := c.p*errValue + c.s*c.integralSum + c.d*derivative
	return clamp(output, -c.maxOutput, c.maxOutput)
}

// clamp bounds v to [min, max] using tinymath's Min/Max rather than
// pulling math.Min/math.Max (which operate on float64 and would force a
// narrowing conversion on every call in a hot control-loop path).
func clamp(v, min, max float32) float32 {
	return tinymath.Max(tinymath.Min(v, max), min)
}
