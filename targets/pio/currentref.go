//go:build rp2040 || rp2350

package pio

import (
	"machine"

	"sm4/config"
	"sm4/core"
)

// pwmCurrentRef drives one axis's TMC2100-equivalent current
// reference from a hardware PWM slice, low-pass filtered externally
// into an analog voltage, in place of the primary target's DAC
// channel (targets/stm32f4/stepper.go). Adapted from the donor's
// RP2040PWMDriver (originally targets/rp2040/pwm.go, a generic
// Klipper PWM-pin driver implementing core.PWMDriver for arbitrary
// heater/fan pins) — that file was deleted with the rest of
// targets/rp2040 (DESIGN.md), orphaning core.PWMDriver's only
// implementation; this gives the interface its current-reference
// caller on the PIO target instead.
type pwmCurrentRef struct {
	pin     core.PWMPin
	channel uint8
}

// rp2040PWMDriver is the core.PWMDriver implementation registered via
// core.SetPWMDriver, scoped to the single pin this axis uses (unlike
// the donor's multi-pin map, only one current-reference pin per axis
// ever needs configuring here, so allocation bookkeeping is unneeded).
type rp2040PWMDriver struct {
	pwm     pwmPeripheral
	channel uint8
	top     uint32
}

// pwmPeripheral abstracts TinyGo's unexported *pwmGroup type, exactly
// as the donor's interface of the same name did.
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

const pwmMax = 255

func (d *rp2040PWMDriver) GetMaxValue() uint32 { return pwmMax }

func (d *rp2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	period := (uint64(cycleTicks) * 1_000_000_000) / pclkHz
	if err := d.pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return 0, err
	}
	channel, err := d.pwm.Channel(machine.Pin(pin))
	if err != nil {
		return 0, err
	}
	d.channel = channel
	d.top = d.pwm.Top()
	return cycleTicks, nil
}

func (d *rp2040PWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	duty := (uint32(value) * d.top) / pwmMax
	d.pwm.Set(d.channel, duty)
	return nil
}

func (d *rp2040PWMDriver) DisablePWM(pin core.PWMPin) error {
	d.pwm.Set(d.channel, 0)
	return nil
}

func pwmSliceFor(pin machine.Pin) pwmPeripheral {
	switch (uint8(pin) >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// newPWMCurrentRef configures a hardware PWM slice on pin at a fixed
// ~20kHz carrier (filtered externally by the board's RC network into
// the TMC2100's analog current-reference input) and registers it as
// the process-wide core.PWMDriver via core.SetPWMDriver.
func newPWMCurrentRef(pin machine.Pin) (*pwmCurrentRef, error) {
	driver := &rp2040PWMDriver{pwm: pwmSliceFor(pin)}
	core.SetPWMDriver(driver)

	const carrierHz = 20_000
	cycleTicks := uint32(pclkHz / carrierHz)
	if _, err := driver.ConfigureHardwarePWM(core.PWMPin(pin), cycleTicks); err != nil {
		return nil, err
	}
	return &pwmCurrentRef{pin: core.PWMPin(pin), channel: driver.channel}, nil
}

// Set programs the current reference for amps, ported from
// targets/stm32f4/stepper.go's SetCurrent voltage formula
// (current_reference.rs) but rescaled from a 12-bit DAC code to an
// 8-bit PWM duty ratio, since this target has no DAC peripheral.
func (r *pwmCurrentRef) Set(amps float32) {
	if amps < 0 {
		amps = -amps
	}
	dacCode := amps * float32(config.MaxDACValue) / config.FullScaleVoltage *
		(config.SenseOhms + config.OffsetOhms) / 0.707
	duty := uint32(dacCode * pwmMax / config.MaxDACValue)
	if duty > pwmMax {
		duty = pwmMax
	}
	core.MustPWM().SetDutyCycle(r.pin, core.PWMValue(duty))
}
