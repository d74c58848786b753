package motion

import "testing"

// Ported from the position_manipulation test in
// original_source/Software/sm4-shared/src/models/position.rs.
func TestPositionAddIncrements(t *testing.T) {
	p := ZeroPosition(4)

	p.AddIncrements(6)
	if p.Revolutions != 1 || p.Angle != 2 {
		t.Fatalf("after += 6: got (rev=%d, angle=%d), want (1, 2)", p.Revolutions, p.Angle)
	}

	p.AddIncrements(-2)
	if p.Revolutions != 1 || p.Angle != 0 {
		t.Fatalf("after += -2: got (rev=%d, angle=%d), want (1, 0)", p.Revolutions, p.Angle)
	}

	p.AddIncrements(-1)
	if p.Revolutions != 0 || p.Angle != 3 {
		t.Fatalf("after += -1: got (rev=%d, angle=%d), want (0, 3)", p.Revolutions, p.Angle)
	}

	p.SubIncrements(5)
	if p.Revolutions != -1 || p.Angle != 2 {
		t.Fatalf("after -= 5: got (rev=%d, angle=%d), want (-1, 2)", p.Revolutions, p.Angle)
	}
	if got := p.GetIncrements(); got != -2 {
		t.Fatalf("GetIncrements() = %d, want -2", got)
	}
}

func TestPositionAddSub(t *testing.T) {
	cases := []struct {
		name        string
		a, b        Position
		op          string
		wantRev     int32
		wantAngle   uint32
	}{
		{"1,1 + 3,1", NewPosition(4, 1, 1), NewPosition(4, 3, 1), "add", 4, 2},
		{"1,1 + 3,3", NewPosition(4, 1, 1), NewPosition(4, 3, 3), "add", 5, 0},
		{"1,1 - 0,1", NewPosition(4, 1, 1), NewPosition(4, 0, 1), "sub", 1, 0},
		{"1,1 - 1,1", NewPosition(4, 1, 1), NewPosition(4, 1, 1), "sub", 0, 0},
		{"1,1 - 1,2", NewPosition(4, 1, 1), NewPosition(4, 1, 2), "sub", -1, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got Position
			if c.op == "add" {
				got = c.a.Add(c.b)
			} else {
				got = c.a.Sub(c.b)
			}
			if got.Revolutions != c.wantRev || got.Angle != c.wantAngle {
				t.Fatalf("got (rev=%d, angle=%d), want (rev=%d, angle=%d)", got.Revolutions, got.Angle, c.wantRev, c.wantAngle)
			}
		})
	}
}

func TestNewPositionSimpleCarry(t *testing.T) {
	p := NewPosition(4, 0, 6)
	if p.Revolutions != 1 || p.Angle != 2 {
		t.Fatalf("NewPosition(4, 0, 6) = (rev=%d, angle=%d), want (1, 2)", p.Revolutions, p.Angle)
	}
}

func TestGetRelativeRevolutions(t *testing.T) {
	p := NewPosition(4, 1, 2)
	if got, want := p.GetRelativeRevolutions(), float32(1.5); got != want {
		t.Fatalf("GetRelativeRevolutions() = %v, want %v", got, want)
	}
}
