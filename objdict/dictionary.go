// Package objdict implements the in-RAM object dictionary: per-axis
// motion state plus scalar environment readings (battery voltage,
// temperature), addressed by the CANopen (index, subindex) pairs the
// canopen package's SDO handlers and PDO encoders use.
//
// Ported from original_source/Software/sm4-firmware/src/object_dictionary.rs
// and the AxisDictionary type referenced throughout
// original_source/Software/embedded/firmware/src/protocol/canopen.rs.
package objdict

import "sm4/motion"

// AxisDictionary holds one axis's full motion state: mode/enable flags,
// target and actual velocity/position, the per-phase current settings,
// and the velocity/position PSD gains. This is the concrete type that
// satisfies motion.AxisState.
type AxisDictionary struct {
	mode    motion.AxisMode
	enabled bool

	targetVelocity float32
	actualVelocity float32

	targetPosition motion.Position
	actualPosition motion.Position

	acceleration                  float32
	velocityFeedbackControlEnabled bool

	standstillCurrent       float32
	acceleratingCurrent     float32
	constantVelocityCurrent float32

	velocityP, velocityS, velocityD, velocityMax float32
	positionP, positionS, positionD, positionMax float32
}

// NewAxisDictionary builds an axis dictionary at the given encoder
// resolution, with every persistent field at the defaults
// persistent_dictionary.rs loads at boot (see config.Default*).
func NewAxisDictionary(resolution uint32) *AxisDictionary {
	return &AxisDictionary{
		mode:           motion.ModeVelocity,
		targetPosition: motion.ZeroPosition(resolution),
		actualPosition: motion.ZeroPosition(resolution),
	}
}

func (a *AxisDictionary) Mode() motion.AxisMode { return a.mode }
func (a *AxisDictionary) SetMode(m motion.AxisMode) { a.mode = m }

func (a *AxisDictionary) Enabled() bool        { return a.enabled }
func (a *AxisDictionary) SetEnabled(e bool)    { a.enabled = e }

func (a *AxisDictionary) TargetVelocity() float32     { return a.targetVelocity }
func (a *AxisDictionary) SetTargetVelocity(v float32) { a.targetVelocity = v }
func (a *AxisDictionary) ActualVelocity() float32     { return a.actualVelocity }
func (a *AxisDictionary) SetActualVelocity(v float32) { a.actualVelocity = v }

func (a *AxisDictionary) TargetPosition() motion.Position     { return a.targetPosition }
func (a *AxisDictionary) SetTargetPosition(p motion.Position) { a.targetPosition = p }
func (a *AxisDictionary) ActualPosition() motion.Position     { return a.actualPosition }
func (a *AxisDictionary) SetActualPosition(p motion.Position) { a.actualPosition = p }

func (a *AxisDictionary) Acceleration() float32     { return a.acceleration }
func (a *AxisDictionary) SetAcceleration(v float32) { a.acceleration = v }

func (a *AxisDictionary) VelocityFeedbackControlEnabled() bool { return a.velocityFeedbackControlEnabled }
func (a *AxisDictionary) SetVelocityFeedbackControlEnabled(v bool) {
	a.velocityFeedbackControlEnabled = v
}

func (a *AxisDictionary) StandstillCurrent() float32       { return a.standstillCurrent }
func (a *AxisDictionary) SetStandstillCurrent(v float32)   { a.standstillCurrent = v }
func (a *AxisDictionary) AcceleratingCurrent() float32     { return a.acceleratingCurrent }
func (a *AxisDictionary) SetAcceleratingCurrent(v float32) { a.acceleratingCurrent = v }
func (a *AxisDictionary) ConstantVelocityCurrent() float32 { return a.constantVelocityCurrent }
func (a *AxisDictionary) SetConstantVelocityCurrent(v float32) {
	a.constantVelocityCurrent = v
}

func (a *AxisDictionary) VelocityGains() (p, s, d, max float32) {
	return a.velocityP, a.velocityS, a.velocityD, a.velocityMax
}
func (a *AxisDictionary) SetVelocityP(v float32)   { a.velocityP = v }
func (a *AxisDictionary) SetVelocityS(v float32)   { a.velocityS = v }
func (a *AxisDictionary) SetVelocityD(v float32)   { a.velocityD = v }
func (a *AxisDictionary) SetVelocityMax(v float32) { a.velocityMax = v }

func (a *AxisDictionary) PositionGains() (p, s, d, max float32) {
	return a.positionP, a.positionS, a.positionD, a.positionMax
}
func (a *AxisDictionary) SetPositionP(v float32)   { a.positionP = v }
func (a *AxisDictionary) SetPositionS(v float32)   { a.positionS = v }
func (a *AxisDictionary) SetPositionD(v float32)   { a.positionD = v }
func (a *AxisDictionary) SetPositionMax(v float32) { a.positionMax = v }

// ObjectDictionary is the whole node's addressable state: two axes plus
// the scalar environment readings. Ported from
// object_dictionary.rs's ObjectDictionary.
type ObjectDictionary struct {
	batteryVoltage float32
	temperature    float32
	axis1          *AxisDictionary
	axis2          *AxisDictionary
}

// NewObjectDictionary builds a fresh dictionary for both axes at the
// given encoder resolution.
func NewObjectDictionary(resolution uint32) *ObjectDictionary {
	return &ObjectDictionary{
		axis1: NewAxisDictionary(resolution),
		axis2: NewAxisDictionary(resolution),
	}
}

func (o *ObjectDictionary) Axis1() *AxisDictionary { return o.axis1 }
func (o *ObjectDictionary) Axis2() *AxisDictionary { return o.axis2 }

func (o *ObjectDictionary) BatteryVoltage() float32     { return o.batteryVoltage }
func (o *ObjectDictionary) SetBatteryVoltage(v float32) { o.batteryVoltage = v }
func (o *ObjectDictionary) Temperature() float32        { return o.temperature }
func (o *ObjectDictionary) SetTemperature(v float32)    { o.temperature = v }
