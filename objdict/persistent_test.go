package objdict

import "testing"

// fakeStore is a minimal in-memory PersistentStore test double.
type fakeStore struct {
	values map[uint16]float32
}

func newFakeStore() *fakeStore { return &fakeStore{values: map[uint16]float32{}} }

func (s *fakeStore) ReadF32(key uint16) (float32, bool) {
	v, ok := s.values[key]
	return v, ok
}
func (s *fakeStore) WriteF32(key uint16, value float32) error {
	s.values[key] = value
	return nil
}
func (s *fakeStore) Read(key uint16) (uint32, bool) {
	v, ok := s.values[key]
	if v != 0 {
		return 1, ok
	}
	return 0, ok
}
func (s *fakeStore) Write(key uint16, value uint32) error {
	if value != 0 {
		s.values[key] = 1
	} else {
		s.values[key] = 0
	}
	return nil
}

func TestLoadPersistentObjectDictionaryUsesDefaultsOnBlankStore(t *testing.T) {
	d := LoadPersistentObjectDictionary(3200, newFakeStore())

	if got := d.Axis1().Acceleration(); got != 50.0 {
		t.Fatalf("Axis1().Acceleration() = %v, want 50.0 default", got)
	}
	p, s, dg, max := d.Axis2().VelocityGains()
	if p != 1.0 || s != 0.1 || dg != 0.0 || max != 3.0 {
		t.Fatalf("Axis2().VelocityGains() = (%v,%v,%v,%v), want defaults (1.0, 0.1, 0.0, 3.0)", p, s, dg, max)
	}
}

func TestWriteAxisFieldPersistsPersistentFieldsOnly(t *testing.T) {
	store := newFakeStore()
	d := LoadPersistentObjectDictionary(3200, store)

	if err := d.WriteAxisField(1, KeyAcceleration, 75.0); err != nil {
		t.Fatalf("WriteAxisField() error = %v", err)
	}
	if got := d.Axis1().Acceleration(); got != 75.0 {
		t.Fatalf("Axis1().Acceleration() after write = %v, want 75.0", got)
	}
	if _, ok := store.ReadF32(KeyAcceleration.storageKey(1)); !ok {
		t.Fatalf("persistent field write should reach the store")
	}

	// TargetVelocity is not persistent: it only lives in RAM.
	if err := d.WriteAxisField(1, KeyTargetVelocity, 12.0); err != nil {
		t.Fatalf("WriteAxisField() error = %v", err)
	}
	if _, ok := store.ReadF32(KeyTargetVelocity.storageKey(1)); ok {
		t.Fatalf("non-persistent field should not be written to the store")
	}
}

func TestAxisFieldsAreIndependentPerAxis(t *testing.T) {
	store := newFakeStore()
	d := LoadPersistentObjectDictionary(3200, store)

	d.WriteAxisField(1, KeyAcceleration, 10.0)
	d.WriteAxisField(2, KeyAcceleration, 20.0)

	if d.Axis1().Acceleration() != 10.0 || d.Axis2().Acceleration() != 20.0 {
		t.Fatalf("axis fields must not alias: axis1=%v axis2=%v", d.Axis1().Acceleration(), d.Axis2().Acceleration())
	}
}

func TestAxisKeyReadOnlyAndPersistent(t *testing.T) {
	if !KeyActualVelocity.ReadOnly() {
		t.Fatalf("KeyActualVelocity should be read-only")
	}
	if KeyTargetVelocity.ReadOnly() {
		t.Fatalf("KeyTargetVelocity should not be read-only")
	}
	if !KeyAcceleration.Persistent() {
		t.Fatalf("KeyAcceleration should be persistent")
	}
	if KeyMode.Persistent() {
		t.Fatalf("KeyMode should not be persistent")
	}
}

func TestParseAxisKeyRejectsOutOfRange(t *testing.T) {
	if _, ok := ParseAxisKey(0); ok {
		t.Fatalf("subindex 0 should not parse to a valid AxisKey")
	}
	if _, ok := ParseAxisKey(255); ok {
		t.Fatalf("subindex 255 should not parse to a valid AxisKey")
	}
	if k, ok := ParseAxisKey(uint8(KeyMode)); !ok || k != KeyMode {
		t.Fatalf("subindex %d should parse to KeyMode", uint8(KeyMode))
	}
}
