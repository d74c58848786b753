//go:build rp2040

package pio

import (
	"machine"

	"sm4/motion"
)

// PIO allocation tracking: RP2040 has 2 PIO blocks with 4 state
// machines each, and this board needs exactly one state machine per
// axis. Kept from the donor's round-robin allocator, which is
// general-purpose infrastructure independent of the Klipper command
// dictionary the rest of donor stepper_init.go was built around.
var (
	pioAllocations = [2][4]bool{}
	nextPIONum     = uint8(0)
	nextSMNum      = uint8(0)
)

// allocatePIO reserves the next free (pioNum, smNum) pair.
func allocatePIO() (uint8, uint8, bool) {
	for i := 0; i < 8; i++ {
		pioNum := nextPIONum
		smNum := nextSMNum

		nextSMNum++
		if nextSMNum >= 4 {
			nextSMNum = 0
			nextPIONum = (nextPIONum + 1) % 2
		}

		if !pioAllocations[pioNum][smNum] {
			pioAllocations[pioNum][smNum] = true
			return pioNum, smNum, true
		}
	}
	return 0, 0, false
}

// GetPIOAllocationStatus returns PIO allocation status for debugging.
func GetPIOAllocationStatus() [2][4]bool {
	return pioAllocations
}

// NewAxisDriver allocates the next free PIO state machine and builds
// a motion.StepDriver for one axis, wiring stepPin/dirPin to the
// step-pulse state machine and currentPin to its hardware-PWM current
// reference. Mirrors targets/stm32f4/main.go's per-axis
// newTMC2100Driver call, substituting this board variant's PIO +
// PWM peripherals for TIM + DAC.
func NewAxisDriver(stepPin, dirPin, currentPin machine.Pin, invertDir bool) (motion.StepDriver, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		panic("pio: no PIO state machine available for axis driver")
	}
	return NewPIOStepDriver(pioNum, smNum, stepPin, dirPin, currentPin, invertDir)
}
