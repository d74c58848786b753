package bench

import (
	"bytes"
	"testing"

	"periph.io/x/conn/v3"

	"sm4/motion"
)

// fakeConn is a conn.Conn double recording every transaction and
// replaying canned register contents, modelled on the board's
// register map rather than any real bus electrical behaviour.
type fakeConn struct {
	regs map[byte][]byte
	txs  [][2][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{regs: map[byte][]byte{}}
}

func (f *fakeConn) String() string      { return "fake" }
func (f *fakeConn) Duplex() conn.Duplex { return conn.Half }

func (f *fakeConn) Tx(w, r []byte) error {
	f.txs = append(f.txs, [2][]byte{append([]byte(nil), w...), r})
	if len(w) == 0 {
		return nil
	}
	reg := w[0]
	if len(w) == 1 && len(r) > 0 {
		copy(r, f.regs[reg])
		return nil
	}
	f.regs[reg] = append([]byte(nil), w[1:]...)
	return nil
}

func TestWriteThenReadAxisSettingsRoundTrips(t *testing.T) {
	c := newFakeConn()
	b := newBench(c)

	want := AxisSettings{Axis1Mode: motion.ModePosition, Axis2Mode: motion.ModeVelocity, Axis1Enabled: true, Axis2Enabled: false}
	if err := b.WriteAxisSettings(want); err != nil {
		t.Fatalf("WriteAxisSettings: %v", err)
	}
	got, err := b.ReadAxisSettings()
	if err != nil {
		t.Fatalf("ReadAxisSettings: %v", err)
	}
	if got != want {
		t.Fatalf("ReadAxisSettings = %+v, want %+v", got, want)
	}
}

func TestWriteThenReadAxisVelocityRoundTrips(t *testing.T) {
	c := newFakeConn()
	b := newBench(c)

	if err := b.WriteAxisVelocity(1, 2.5); err != nil {
		t.Fatalf("WriteAxisVelocity: %v", err)
	}
	got, err := b.ReadAxisVelocity(1)
	if err != nil {
		t.Fatalf("ReadAxisVelocity: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("ReadAxisVelocity = %v, want 2.5", got)
	}
}

func TestWriteAxisVelocityRejectsInvalidAxis(t *testing.T) {
	b := newBench(newFakeConn())
	if err := b.WriteAxisVelocity(3, 1.0); err == nil {
		t.Fatalf("WriteAxisVelocity(axis=3) = nil error, want error")
	}
}

func TestWriteBothVelocityPacksBothAxesInOneTransaction(t *testing.T) {
	c := newFakeConn()
	b := newBench(c)

	if err := b.WriteBothVelocity(1.0, -1.0); err != nil {
		t.Fatalf("WriteBothVelocity: %v", err)
	}
	if len(c.txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(c.txs))
	}
	w := c.txs[0][0]
	if len(w) != 9 || w[0] != 0x40 {
		t.Fatalf("write = %v, want register 0x40 + 8 bytes", w)
	}
}

func TestReadAxisPositionDecodesRevolutionsAndAngle(t *testing.T) {
	c := newFakeConn()
	b := newBench(c)

	c.regs[0x31] = []byte{0x02, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}
	got, err := b.ReadAxisPosition(1, 3200)
	if err != nil {
		t.Fatalf("ReadAxisPosition: %v", err)
	}
	if got.GetRevolutions() != 2 || got.GetAngle() != 7 {
		t.Fatalf("ReadAxisPosition = %+v, want revolutions=2 angle=7", got)
	}
}

func TestReadBothPositionSplitsSixteenBytesAcrossAxes(t *testing.T) {
	c := newFakeConn()
	b := newBench(c)

	var payload bytes.Buffer
	payload.Write([]byte{1, 0, 0, 0, 10, 0, 0, 0})
	payload.Write([]byte{2, 0, 0, 0, 20, 0, 0, 0})
	c.regs[0x50] = payload.Bytes()

	a1, a2, err := b.ReadBothPosition(3200)
	if err != nil {
		t.Fatalf("ReadBothPosition: %v", err)
	}
	if a1.GetRevolutions() != 1 || a1.GetAngle() != 10 {
		t.Fatalf("axis1 = %+v, want revolutions=1 angle=10", a1)
	}
	if a2.GetRevolutions() != 2 || a2.GetAngle() != 20 {
		t.Fatalf("axis2 = %+v, want revolutions=2 angle=20", a2)
	}
}
