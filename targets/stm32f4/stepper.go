//go:build stm32f4

package main

import (
	"device/stm32"
	"machine"
	"sync/atomic"

	"sm4/config"
)

// tmc2100Driver is the TIM-based implementation of motion.StepDriver
// spec.md §4.C generalises from the TMC2100: a direction GPIO pin plus
// a step-pulse timer channel programmed to a 50%-duty square wave at
// the requested frequency, and a DAC channel carrying the current
// reference voltage. Ported register-for-register from
// original_source's step_timer.rs (the ticks/psc/arr/ccr derivation)
// and current_reference.rs (the voltage formula), translated from the
// stm32f4xx_hal PAC types to TinyGo's equivalent device/stm32 register
// struct the way the donor's targets/pio/stepper_gpio.go (not carried
// into this module) poked device/rp directly for its step pulse.
type tmc2100Driver struct {
	timer   *stm32.TIM_Type
	dirPin  machine.Pin
	dacIdx  uint8 // 1 or 2, selects DAC channel 1/2 output register
	invert  bool
	lastHz  uint32
	current uint32 // atomic: last-programmed DAC output, for diagnostics
}

// newTMC2100Driver wires one axis's step timer, direction pin and DAC
// channel. timer must already be enabled in RCC by the caller (the two
// axes share TIM1/TIM8, both already clocked by main.go's board bring-up).
func newTMC2100Driver(timer *stm32.TIM_Type, dirPin machine.Pin, dacIdx uint8, invert bool) *tmc2100Driver {
	dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	timer.CR1.ClearBits(stm32.TIM_CR1_CEN)
	timer.CNT.Set(0)
	timer.CR2.ReplaceBits(stm32.TIM_CR2_MMS_Compare_OC1Ref<<stm32.TIM_CR2_MMS_Pos, stm32.TIM_CR2_MMS_Msk, 0)
	timer.CCMR1_Output.ReplaceBits(6<<stm32.TIM_CCMR1_Output_OC1M_Pos, stm32.TIM_CCMR1_Output_OC1M_Msk, 0) // PWM mode 1
	timer.CCMR1_Output.SetBits(stm32.TIM_CCMR1_Output_OC1FE)
	timer.CCER.SetBits(stm32.TIM_CCER_CC1E)
	timer.BDTR.SetBits(stm32.TIM_BDTR_AOE) // advanced timers (TIM1/TIM8) need the output-enable bit

	return &tmc2100Driver{timer: timer, dirPin: dirPin, dacIdx: dacIdx, invert: invert}
}

// SetOutputFrequency implements motion.StepDriver. rps is in
// revolutions/second; direction is carried by its sign. Setting the
// same magnitude twice is a no-op, matching step_timer.rs's early
// return on an unchanged frequency.
func (d *tmc2100Driver) SetOutputFrequency(rps float32) {
	forward := rps >= 0
	if d.invert {
		forward = !forward
	}
	if forward {
		d.dirPin.Low()
	} else {
		d.dirPin.High()
	}

	magnitude := rps
	if magnitude < 0 {
		magnitude = -magnitude
	}
	freq := uint32(magnitude * float32(config.MicrostepsPerRev) * stepsPerRev)
	if freq == d.lastHz {
		return
	}
	d.lastHz = freq

	d.timer.CR1.ClearBits(stm32.TIM_CR1_CEN)
	d.timer.CNT.Set(0)
	if freq == 0 {
		return // leave the timer paused, per spec.md §4.C
	}

	ticks := advancedTimerClockHz / freq
	psc := (ticks - 1) / (1 << 16)
	d.timer.PSC.Set(psc)
	arr := ticks / (psc + 1)
	d.timer.ARR.Set(arr)

	d.timer.CR1.SetBits(stm32.TIM_CR1_URS)
	d.timer.EGR.Set(stm32.TIM_EGR_UG)
	d.timer.CR1.ClearBits(stm32.TIM_CR1_URS)

	d.timer.CCR1.Set(arr / 2)
	d.timer.CR1.SetBits(stm32.TIM_CR1_CEN)
}

// SetCurrent implements motion.StepDriver, ported verbatim from
// current_reference.rs's linear map from amps to a 12-bit DAC output
// voltage, clamped to the board's maximum reference voltage.
func (d *tmc2100Driver) SetCurrent(amps float32) {
	if amps < 0 {
		amps = -amps
	}
	voltage := amps * float32(config.MaxDACValue) / config.FullScaleVoltage *
		(config.SenseOhms + config.OffsetOhms) / 0.707
	out := uint32(voltage)
	if out > config.MaxDACValue {
		out = config.MaxDACValue
	}
	atomic.StoreUint32(&d.current, out)

	if d.dacIdx == 1 {
		stm32.DAC.DHR12R1.Set(out)
	} else {
		stm32.DAC.DHR12R2.Set(out)
	}
}

// stepsPerRev is the stepper motor's full-step count per revolution
// (a standard 1.8deg/step NEMA motor), multiplied by MicrostepsPerRev
// in SetOutputFrequency to get the step-pulse rate.
const stepsPerRev = 200

// advancedTimerClockHz is TIM1/TIM8's input clock on APB2, doubled
// relative to the 42MHz APB2 bus clock by the non-1 APB2 prescaler,
// matching step_timer.rs's pclk2()*pclk_mul derivation.
const advancedTimerClockHz = 84_000_000
