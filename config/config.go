// Package config centralizes the board and protocol tunables, the way
// the donor's standalone/config package centralizes kinematic tunables.
package config

import "time"

// CANID is the standard 11-bit CANopen node ID this board answers to.
// Ported from original_source's CAN_ID constant.
const CANID uint16 = 0x10

// MicrostepsPerRev is the driver's configured microstep resolution.
const MicrostepsPerRev uint32 = 256

// EncoderResolution is the step-counter encoder's counts-per-revolution,
// matching original_source's ENCODER_RESOLUTION = 16 * 200.
const EncoderResolution uint32 = 16 * 200

// SenseOhms is the current-sense resistor value used by the DAC current
// reference formula (4.C), ported from current_reference.rs.
const SenseOhms = 0.220

// Current-reference DAC formula constants, ported verbatim from
// original_source/Software/sm4-firmware/src/current_reference.rs.
const (
	FullScaleVoltage = 0.32
	OffsetOhms       = 0.02
	MaxDACValue      = 2500
)

// Tick periods for the cooperative scheduler (spec.md §2's component
// table), expressed as Go durations rather than a fixed timer-tick
// divisor of a 168MHz core clock (original_source expresses these as
// SECOND/n against a hardware clock constant; this rewrite keeps the
// same cadence but expresses it platform-independently so host-side
// simulation and firmware share one set of constants).
const (
	ControlPeriod     = 10 * time.Millisecond
	RampPeriod        = time.Millisecond
	MonitoringPeriod  = 100 * time.Millisecond
	FailsafeTickPeriod = 100 * time.Millisecond
	HeartbeatPeriod   = 500 * time.Millisecond
	LEDBlinkPeriod    = 10 * time.Millisecond
)

// SpeedCommandResetInterval is the number of failsafe ticks a received
// RxPDO2 (target velocity) command keeps movement unblocked for before
// the failsafe trips, ported from original_source's
// SPEED_COMMAND_RESET_INTERVAL = 10.
const SpeedCommandResetInterval uint8 = 10

// Persistent default values, ported from
// original_source/Software/shared/src/canopen/persistent_dictionary.rs.
const (
	DefaultAcceleration              = 50.0
	DefaultVelocityFeedbackEnabled   = false
	DefaultStandstillCurrent         = 0.4
	DefaultAcceleratingCurrent       = 0.7
	DefaultConstantVelocityCurrent   = 0.6
	DefaultVelocityP                 = 1.0
	DefaultVelocityS                 = 0.1
	DefaultVelocityD                 = 0.0
	DefaultVelocityMaxOutput         = 3.0
	DefaultPositionP                 = 3.0
	DefaultPositionS                 = 0.001
	DefaultPositionD                 = 0.0001
	DefaultPositionMaxOutput         = 3.0
)
