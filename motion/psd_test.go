package motion

import "testing"

func TestPSDControllerProportional(t *testing.T) {
	c := NewPSDController(2, 0, 0, 10, 1)
	got := c.Update(1)
	if got != 2 {
		t.Fatalf("Update(1) = %v, want 2", got)
	}
}

func TestPSDControllerClampsOutput(t *testing.T) {
	c := NewPSDController(10, 0, 0, 3, 1)
	got := c.Update(1)
	if got != 3 {
		t.Fatalf("Update(1) = %v, want clamped to 3", got)
	}
}

func TestPSDControllerIntegralAccumulates(t *testing.T) {
	c := NewPSDController(0, 1, 0, 10, 1)
	c.Update(1)
	got := c.Update(1)
	if got != 2 {
		t.Fatalf("second Update(1) = %v, want 2 (sum of two ticks)", got)
	}
}

func TestPSDControllerSamplingPeriodScalesIntegralAndDerivative(t *testing.T) {
	// Ts=0.01 (the 100Hz control tick): sum += error*Ts accumulates ten
	// times slower per call than Ts=1 would, and the derivative term
	// divides by Ts instead of leaving it unscaled.
	c := NewPSDController(0, 1, 0, 10, 0.01)
	got := c.Update(1)
	want := float32(0.01)
	if got != want {
		t.Fatalf("Update(1) = %v, want %v (sum scaled by Ts)", got, want)
	}

	c2 := NewPSDController(0, 0, 1, 10, 0.01)
	got2 := c2.Update(1)
	want2 := float32(100)
	if got2 != want2 {
		t.Fatalf("Update(1) = %v, want %v (derivative divided by Ts)", got2, want2)
	}
}

func TestPSDControllerResetClearsState(t *testing.T) {
	c := NewPSDController(0, 1, 1, 10, 1)
	c.Update(2)
	c.Reset()
	// The first Update after Reset computes its derivative against the
	// freshly-zeroed previous error, not the stale previous=2 from
	// before Reset — so the result reflects only this error, not
	// whatever was accumulating before the reset.
	got := c.Update(1)
	want := float32(2) // sum term (1*1) + derivative term ((1-0)/1)
	if got != want {
		t.Fatalf("Update(1) after Reset() = %v, want %v (no leftover integral/derivative)", got, want)
	}
}
