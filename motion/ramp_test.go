package motion

import "testing"

func TestRampGeneratorRampsUpGradually(t *testing.T) {
	r := NewRampGenerator(1000) // 1000 Hz tick rate
	// acceleration=2000 units/s/s -> step of 2 units/tick
	got := r.Generate(10, 2000)
	if got != 2 {
		t.Fatalf("first tick = %v, want 2", got)
	}
	got = r.Generate(10, 2000)
	if got != 4 {
		t.Fatalf("second tick = %v, want 4", got)
	}
}

// The convergence condition is the asymmetric diff < step (not
// |diff| <= step), preserved exactly per spec.md §9: a decreasing
// target snaps to the target in a single tick regardless of step size,
// since diff is negative and therefore always less than a positive
// step.
func TestRampGeneratorDecelerationSnapsImmediately(t *testing.T) {
	r := NewRampGenerator(1000)
	r.Reset(100)

	got := r.Generate(0, 1) // tiny acceleration, large decrease
	if got != 0 {
		t.Fatalf("decelerating generate() = %v, want 0 (snap to target)", got)
	}
}

func TestRampGeneratorConvergesToTarget(t *testing.T) {
	r := NewRampGenerator(1000)
	for i := 0; i < 100; i++ {
		r.Generate(50, 2000)
	}
	if got := r.CurrentSpeed(); got != 50 {
		t.Fatalf("CurrentSpeed() = %v, want 50", got)
	}
}
