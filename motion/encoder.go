package motion

// Counter abstracts a free-running hardware pulse counter (a timer in
// encoder/external-clock mode) that counts step pulses but carries no
// sign of its own — direction must be tracked separately and applied by
// the caller. Ported from the Counter trait in
// original_source/Software/sm4-firmware/src/step_counter.rs.
type Counter interface {
	// GetValue returns the counter's current unsigned pulse count.
	GetValue() uint32
	// ResetValue zeroes the hardware counter.
	ResetValue()
}

// SamplePeriodMicros is the fixed sampling period the encoder speed
// calculation divides by, matching the 1000us sampling_period the
// donor firmware configures for both axes in sm4.rs.
const SamplePeriodMicros = 1000

// Encoder tracks an axis's actual position and speed from a step-pulse
// counter. It must be told explicitly when the commanded direction
// changes, because the underlying hardware counter has no sign: see
// NotifyDirectionChanged.
type Encoder struct {
	counter        Counter
	pastPosition   Position
	currentPosition Position
	currentSpeed   float32
	direction      Direction
	samplingPeriod uint32
	resolution     uint32
}

// NewEncoder builds an Encoder over the given hardware counter at the
// given resolution, with a Clockwise default direction.
func NewEncoder(counter Counter, resolution uint32, samplingPeriodMicros uint32) *Encoder {
	return &Encoder{
		counter:        counter,
		pastPosition:   ZeroPosition(resolution),
		currentPosition: ZeroPosition(resolution),
		direction:      Clockwise,
		samplingPeriod: samplingPeriodMicros,
		resolution:     resolution,
	}
}

// updateCurrentPosition folds the hardware counter's accumulated pulses
// into currentPosition, signed by the currently-tracked direction, then
// resets the hardware counter. Ported from
// StepCounterEncoder::update_current_position.
func (e *Encoder) updateCurrentPosition() {
	delta := int32(e.counter.GetValue())
	if e.direction == CounterClockwise {
		delta = -delta
	}
	e.currentPosition.AddIncrements(delta)
	e.counter.ResetValue()
}

// Sample advances the encoder by one sampling period: it folds in any
// pulses accumulated since the last sample, then recomputes speed from
// the position delta over the sampling period given to NewEncoder.
// Ported from
// StepCounterEncoder's Encoder::sample impl (which calls
// Speed::from_positions using the increments delta between the saved
// past position and the freshly updated current position).
func (e *Encoder) Sample() {
	e.pastPosition = e.currentPosition
	e.updateCurrentPosition()

	diff := float32(e.currentPosition.GetIncrements() - e.pastPosition.GetIncrements())
	e.currentSpeed = diff / float32(e.resolution) * 1.0e6 / float32(e.samplingPeriod)
}

// GetSpeed returns the most recently sampled speed in revolutions per
// second.
func (e *Encoder) GetSpeed() float32 { return e.currentSpeed }

// GetPosition returns the most recently sampled position.
func (e *Encoder) GetPosition() Position { return e.currentPosition }

// ResetPosition zeroes the encoder's tracked position and speed and
// resets the hardware counter, ported from
// StepCounterEncoder::reset_position.
func (e *Encoder) ResetPosition() {
	e.currentPosition = ZeroPosition(e.resolution)
	e.pastPosition = ZeroPosition(e.resolution)
	e.currentSpeed = 0
	e.counter.ResetValue()
}

// NotifyDirectionChanged must be called whenever the commanded step
// direction changes, before any further pulses are counted under the
// new direction. It first folds in pulses accumulated under the OLD
// direction (so they are not misattributed to the new one), then
// records the new direction. Ported from
// StepCounterEncoder::notify_direction_changed.
func (e *Encoder) NotifyDirectionChanged(direction Direction) {
	e.updateCurrentPosition()
	e.direction = direction
}
