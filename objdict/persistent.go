package objdict

import "sm4/config"

// PersistentStore is the subset of storage.Store the persistence
// wrapper needs, named here so tests can substitute a simpler fake
// without pulling in the flash byte-layout machinery.
type PersistentStore interface {
	ReadF32(key uint16) (float32, bool)
	WriteF32(key uint16, value float32) error
	Read(key uint16) (uint32, bool)
	Write(key uint16, value uint32) error
}

// PersistentObjectDictionary wraps an ObjectDictionary so that writes
// to persistent fields (AxisKey.Persistent()) are written through to
// flash synchronously, and loads every persistent field from flash at
// construction time. Ported from
// original_source/Software/shared/src/canopen/persistent_dictionary.rs's
// PersistentStoreObjectDictionary.
type PersistentObjectDictionary struct {
	*ObjectDictionary
	store PersistentStore
}

// LoadPersistentObjectDictionary builds a dictionary at the given
// encoder resolution and loads every persistent field from store,
// falling back to the config defaults for any key not yet written
// (first boot on blank flash). Ported from
// PersistentStoreObjectDictionary::new.
func LoadPersistentObjectDictionary(resolution uint32, store PersistentStore) *PersistentObjectDictionary {
	od := NewObjectDictionary(resolution)
	d := &PersistentObjectDictionary{ObjectDictionary: od, store: store}
	d.loadAxis(od.Axis1(), 1)
	d.loadAxis(od.Axis2(), 2)
	return d
}

func (d *PersistentObjectDictionary) loadAxis(axis *AxisDictionary, axisNum int) {
	loadF32 := func(key AxisKey, def float32, set func(float32)) {
		if v, ok := d.store.ReadF32(key.storageKey(axisNum)); ok {
			set(v)
		} else {
			set(def)
		}
	}
	loadBool := func(key AxisKey, def bool, set func(bool)) {
		if v, ok := d.store.Read(key.storageKey(axisNum)); ok {
			set(v != 0)
		} else {
			set(def)
		}
	}

	loadF32(KeyAcceleration, config.DefaultAcceleration, axis.SetAcceleration)
	loadBool(KeyVelocityFeedbackEnabled, config.DefaultVelocityFeedbackEnabled, axis.SetVelocityFeedbackControlEnabled)
	loadF32(KeyStandstillCurrent, config.DefaultStandstillCurrent, axis.SetStandstillCurrent)
	loadF32(KeyAcceleratingCurrent, config.DefaultAcceleratingCurrent, axis.SetAcceleratingCurrent)
	loadF32(KeyConstantVelocityCurrent, config.DefaultConstantVelocityCurrent, axis.SetConstantVelocityCurrent)
	loadF32(KeyVelocityP, config.DefaultVelocityP, axis.SetVelocityP)
	loadF32(KeyVelocityS, config.DefaultVelocityS, axis.SetVelocityS)
	loadF32(KeyVelocityD, config.DefaultVelocityD, axis.SetVelocityD)
	loadF32(KeyVelocityMax, config.DefaultVelocityMaxOutput, axis.SetVelocityMax)
	loadF32(KeyPositionP, config.DefaultPositionP, axis.SetPositionP)
	loadF32(KeyPositionS, config.DefaultPositionS, axis.SetPositionS)
	loadF32(KeyPositionD, config.DefaultPositionD, axis.SetPositionD)
	loadF32(KeyPositionMax, config.DefaultPositionMaxOutput, axis.SetPositionMax)
}

// WriteAxisField applies value to the named field on the given axis
// (1 or 2), writing through to flash first if the field is persistent.
// This is the single entry point canopen's SDO write handler calls, so
// the write-through behaviour cannot be bypassed by updating the
// dictionary directly. Mode, Enabled and the two target-position keys
// are not applied here: a write to them leaves the dictionary unchanged.
func (d *PersistentObjectDictionary) WriteAxisField(axisNum int, key AxisKey, value float32) error {
	axis := d.axisByNumber(axisNum)

	if key.Persistent() {
		if err := d.store.WriteF32(key.storageKey(axisNum), value); err != nil {
			return err
		}
	}

	switch key {
	case KeyTargetVelocity:
		axis.SetTargetVelocity(value)
	case KeyAcceleration:
		axis.SetAcceleration(value)
	case KeyVelocityFeedbackEnabled:
		axis.SetVelocityFeedbackControlEnabled(value != 0)
	case KeyStandstillCurrent:
		axis.SetStandstillCurrent(value)
	case KeyAcceleratingCurrent:
		axis.SetAcceleratingCurrent(value)
	case KeyConstantVelocityCurrent:
		axis.SetConstantVelocityCurrent(value)
	case KeyVelocityP:
		axis.SetVelocityP(value)
	case KeyVelocityS:
		axis.SetVelocityS(value)
	case KeyVelocityD:
		axis.SetVelocityD(value)
	case KeyVelocityMax:
		axis.SetVelocityMax(value)
	case KeyPositionP:
		axis.SetPositionP(value)
	case KeyPositionS:
		axis.SetPositionS(value)
	case KeyPositionD:
		axis.SetPositionD(value)
	case KeyPositionMax:
		axis.SetPositionMax(value)
	}
	return nil
}

// ReadAxisField returns the named field's current in-RAM value for the
// given axis (1 or 2). Ported from read_object_dictionary's symmetric
// read-side dispatch; unlike writes, reads never touch flash — the
// in-RAM dictionary is authoritative once LoadPersistentObjectDictionary
// has loaded it at boot.
func (d *PersistentObjectDictionary) ReadAxisField(axisNum int, key AxisKey) float32 {
	axis := d.axisByNumber(axisNum)
	switch key {
	case KeyAcceleration:
		return axis.Acceleration()
	case KeyVelocityFeedbackEnabled:
		if axis.VelocityFeedbackControlEnabled() {
			return 1
		}
		return 0
	case KeyStandstillCurrent:
		return axis.StandstillCurrent()
	case KeyAcceleratingCurrent:
		return axis.AcceleratingCurrent()
	case KeyConstantVelocityCurrent:
		return axis.ConstantVelocityCurrent()
	case KeyVelocityP:
		p, _, _, _ := axis.VelocityGains()
		return p
	case KeyVelocityS:
		_, s, _, _ := axis.VelocityGains()
		return s
	case KeyVelocityD:
		_, _, d, _ := axis.VelocityGains()
		return d
	case KeyVelocityMax:
		_, _, _, max := axis.VelocityGains()
		return max
	case KeyPositionP:
		p, _, _, _ := axis.PositionGains()
		return p
	case KeyPositionS:
		_, s, _, _ := axis.PositionGains()
		return s
	case KeyPositionD:
		_, _, d, _ := axis.PositionGains()
		return d
	case KeyPositionMax:
		_, _, _, max := axis.PositionGains()
		return max
	case KeyTargetVelocity:
		return axis.TargetVelocity()
	case KeyActualVelocity:
		return axis.ActualVelocity()
	default:
		return 0
	}
}

func (d *PersistentObjectDictionary) axisByNumber(axisNum int) *AxisDictionary {
	if axisNum == 2 {
		return d.Axis2()
	}
	return d.Axis1()
}
