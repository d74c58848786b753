//go:build stm32f4

package main

import (
	"runtime/volatile"
	"sm4/core"
	"unsafe"
)

// InitClock starts the Cortex-M4 DWT cycle counter and registers it as
// core's hardware time source, the same role the donor's
// targets/rp2350/clock.go gives the RP2350's hardware TIMER0: a
// monotonic tick source core.GetTime() reads directly. The DWT counter
// is used instead of a general-purpose timer peripheral because every
// TIMx capable of free-running 32-bit counting on this part (TIM2,
// TIM5) is already claimed by the per-axis step counters in encoder.go,
// and TIM1/TIM8 drive step-pulse generation — poking the DWT register
// block directly mirrors the donor's own raw-volatile-register
// approach to its hardware timer, just at a different address.
const (
	dwtCtrlAddr    = 0xE0001000
	dwtCyccntAddr  = 0xE0001004
	demcrAddr      = 0xE000EDFC
	demcrTRCENABit = 1 << 24
	dwtCtrlCYCCNTEN = 1
)

var (
	demcr    = (*volatile.Register32)(unsafe.Pointer(uintptr(demcrAddr)))
	dwtCtrl  = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCtrlAddr)))
	dwtCycle = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCyccntAddr)))
)

// InitClock enables the DWT cycle counter. CPU core clock cycles, not
// microseconds, are what core.GetTime() returns on this target, so
// core.TimerFreq is calibrated to this board's actual core clock
// before anything schedules a timer.
func InitClock() {
	demcr.SetBits(demcrTRCENABit)
	dwtCycle.Set(0)
	dwtCtrl.SetBits(dwtCtrlCYCCNTEN)

	core.SetTimerFreq(coreClockHz)
	core.SetHardwareTimerFunc(func() uint32 {
		return dwtCycle.Get()
	})
}

// coreClockHz is the Nucleo-F401's default SYSCLK (and, since the M4
// core clock is undivided from SYSCLK, the DWT cycle counter's rate).
const coreClockHz = 84_000_000
