//go:build stm32f4

package main

import "device/stm32"

// stepCounterTimer implements motion.Counter over a general-purpose
// timer running in external clock mode, counting edges on its TI1
// input (wired to the axis's own step pulse output) the way a real
// encoder would count quadrature edges. Ported register-for-register
// from original_source's step_counter.rs counter! macro: TI1 as the
// clock source (SMS=external clock mode 1, TS=TI1FP1), free-running up
// to 0xFFFFFFFF.
//
// TIM2 and TIM5 are this part's only two 32-bit general-purpose
// timers, one per axis; TIM1/TIM8 (step generation) and the DWT cycle
// counter (system time, clock.go) are both independent of these.
type stepCounterTimer struct {
	timer *stm32.TIM_Type
}

func newStepCounterTimer(timer *stm32.TIM_Type, tiSelector uint32) *stepCounterTimer {
	timer.ARR.Set(0xFFFFFFFF)
	timer.CCMR1_Input.ReplaceBits(1<<stm32.TIM_CCMR1_Input_CC1S_Pos, stm32.TIM_CCMR1_Input_CC1S_Msk, 0) // CC1S=01: IC1 mapped to TI1
	timer.CCER.ClearBits(stm32.TIM_CCER_CC1P | stm32.TIM_CCER_CC1NP)
	timer.CCER.SetBits(stm32.TIM_CCER_CC1E)
	timer.SMCR.ReplaceBits(
		(1<<stm32.TIM_SMCR_SMS_Pos)|(tiSelector<<stm32.TIM_SMCR_TS_Pos),
		stm32.TIM_SMCR_SMS_Msk|stm32.TIM_SMCR_TS_Msk,
		0,
	)
	timer.CR1.SetBits(stm32.TIM_CR1_CEN)
	return &stepCounterTimer{timer: timer}
}

// GetValue implements motion.Counter.
func (c *stepCounterTimer) GetValue() uint32 {
	return c.timer.CNT.Get()
}

// ResetValue implements motion.Counter.
func (c *stepCounterTimer) ResetValue() {
	c.timer.CNT.Set(0)
}
