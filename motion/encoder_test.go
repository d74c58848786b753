package motion

import "testing"

// fakeCounter is a test double for Counter, matching the shape of the
// original Rust's MockEncoder test fixtures.
type fakeCounter struct {
	value uint32
}

func (c *fakeCounter) GetValue() uint32 { return c.value }
func (c *fakeCounter) ResetValue()      { c.value = 0 }

func TestEncoderSampleClockwise(t *testing.T) {
	counter := &fakeCounter{value: 1}
	enc := NewEncoder(counter, 4, 10)

	enc.Sample()

	if got, want := enc.GetSpeed(), float32(25000.0); got != want {
		t.Fatalf("speed = %v, want %v", got, want)
	}
}

func TestEncoderSampleCounterClockwise(t *testing.T) {
	counter := &fakeCounter{value: 1}
	enc := NewEncoder(counter, 4, 10)
	enc.NotifyDirectionChanged(CounterClockwise)

	counter.value = 1
	enc.Sample()

	if got, want := enc.GetSpeed(), float32(-25000.0); got != want {
		t.Fatalf("speed = %v, want %v", got, want)
	}
}

func TestEncoderDirectionChangeAppliesPendingPulsesUnderOldDirection(t *testing.T) {
	counter := &fakeCounter{value: 3}
	enc := NewEncoder(counter, 4, 10)

	// 3 pulses accrue under Clockwise before the direction flips.
	enc.NotifyDirectionChanged(CounterClockwise)

	if got := enc.currentPosition.GetIncrements(); got != 3 {
		t.Fatalf("pending pulses not folded in under old direction: increments = %d, want 3", got)
	}
}

func TestEncoderResetPosition(t *testing.T) {
	counter := &fakeCounter{value: 7}
	enc := NewEncoder(counter, 4, 10)
	enc.Sample()

	enc.ResetPosition()

	if got := enc.GetPosition().GetIncrements(); got != 0 {
		t.Fatalf("position after reset = %d, want 0", got)
	}
	if got := enc.GetSpeed(); got != 0 {
		t.Fatalf("speed after reset = %v, want 0", got)
	}
	if counter.value != 0 {
		t.Fatalf("hardware counter not reset")
	}
}
