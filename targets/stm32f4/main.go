// Package main is the primary firmware target: a Nucleo-F401-class
// STM32F4 board driving two stepper axes over TIM-based step timers
// and speaking CANopen over an MCP2515 SPI-bridged CAN controller, an I²C
// slave register protocol, and the USB debug envelope protocol
// simultaneously. Battery voltage and temperature are not sampled on
// this target; those dictionary fields stay at zero. Board bring-up follows the donor's
// targets/rp2350/main.go shape (debug UART first, then clock, then
// peripherals, then a panic-recovering main loop); everything it
// drives each tick is this board's own CANopen/motion/object-dictionary
// stack, which the donor firmware never had.
//
//go:build stm32f4

package main

import (
	"device/stm32"
	"machine"
	"time"

	"sm4/canopen"
	"sm4/config"
	"sm4/core"
	"sm4/i2creg"
	"sm4/motion"
	"sm4/objdict"
	"sm4/storage"
)

var (
	flash *storage.Store
	dict  *objdict.PersistentObjectDictionary
	node  *canopen.Node

	axis1 *motion.AxisMotionController
	axis2 *motion.AxisMotionController

	can     *mcp2515Bus
	i2c     *i2cSlaveLink
	usbDbg  *usbDebugLink

	canFault core.FaultLatch

	rampTimer      core.Timer
	controlTimer   core.Timer
	failsafeTimer  core.Timer
	heartbeatTimer core.Timer
	ledTimer       core.Timer

	statusLED machine.Pin
)

func main() {
	InitDebugUART()
	DebugPrintln("[MAIN] stm32f4 starting")

	InitClock()
	core.TimerInit()
	DebugPrintln("[MAIN] clock initialized")

	flash = storage.New(internalFlash{})
	if err := flash.Init(); err != nil {
		DebugPrintln("[MAIN] flash init failed, formatting")
	}
	dict = objdict.LoadPersistentObjectDictionary(config.EncoderResolution, flash)
	node = canopen.NewNode(config.CANID, config.EncoderResolution, dict)
	node.SetLogger(DebugPrintln)
	DebugPrintln("[MAIN] object dictionary loaded")

	axis1 = newAxisController(1)
	axis2 = newAxisController(2)
	DebugPrintln("[MAIN] axis controllers wired")

	i2cBus := machine.I2C1
	i2cBus.Configure(machine.I2CConfig{})
	slave := i2creg.NewSlave(dict, node.State)
	slave.OnBusError = func() { canFault.Trip(faultReasonI2CBusError) }
	i2c = newI2CSlaveLink(slave, i2cBus)

	usbDbg = newUSBDebugLink(dict)

	spi := machine.SPI1
	spi.Configure(machine.SPIConfig{Frequency: 10_000_000, Mode: 0})
	bus, err := newMCP2515Bus(spi, machine.PA4, 8_000_000, 500_000)
	if err != nil {
		DebugPrintln("[MAIN] CAN controller init failed")
		canFault.Trip(faultReasonCANInitFailed)
	}
	can = bus

	statusLED = machine.LED
	statusLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	scheduleTicks()
	DebugPrintln("[MAIN] entering main loop")

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					DebugPrintln("[MAIN] recovered panic in main loop")
				}
			}()

			if can != nil {
				if f, ok, err := can.Poll(); err != nil {
					canFault.Trip(faultReasonCANReadError)
				} else if ok {
					handleCANFrame(f)
				}
			}

			usbDbg.Poll()
			core.ProcessTimers()
		}()

		time.Sleep(10 * time.Microsecond)
	}
}

const (
	faultReasonI2CBusError    uint8 = 1
	faultReasonCANInitFailed  uint8 = 2
	faultReasonCANReadError   uint8 = 3
)

// newAxisController wires one axis's step/direction timer, current DAC
// channel and step-counter encoder into a motion.AxisMotionController.
// Axis 1 uses TIM1 (step gen) / TIM2 (step counter, TI1 selector 0) /
// DAC channel 1 / PA8-PA9; axis 2 uses TIM8 / TIM5 (TI1 selector 3) /
// DAC channel 2 / PC6-PC7, mirroring original_source's per-axis
// hardware assignment in board.rs.
func newAxisController(axisNum int) *motion.AxisMotionController {
	var driver *tmc2100Driver
	var counter *stepCounterTimer

	switch axisNum {
	case 1:
		driver = newTMC2100Driver(stm32.TIM1, machine.PA9, 1, false)
		counter = newStepCounterTimer(stm32.TIM2, 0)
	default:
		driver = newTMC2100Driver(stm32.TIM8, machine.PC7, 2, false)
		counter = newStepCounterTimer(stm32.TIM5, 3)
	}

	encoder := motion.NewEncoder(counter, config.EncoderResolution, motion.SamplePeriodMicros)
	controlPeriodSeconds := float32(config.ControlPeriod) / float32(time.Second)
	return motion.NewAxisMotionController(driver, encoder, float32(time.Second/config.RampPeriod), controlPeriodSeconds)
}

// handleCANFrame dispatches one received CAN frame through the node
// and sends back whatever reply (if any) it produces.
func handleCANFrame(f canopen.Frame) {
	reply, hasReply, err := node.HandleFrame(f, config.SpeedCommandResetInterval)
	if err != nil {
		DebugPrintln("[MAIN] frame handling error")
		return
	}
	if hasReply && can != nil {
		if err := can.Send(reply); err != nil {
			canFault.Trip(faultReasonCANReadError)
		}
	}
}

// scheduleTicks arms the five periodic timers spec.md §4 defines,
// each rescheduling itself on fire the way the donor's
// core.driverPollHandler reschedules its own poll timer.
func scheduleTicks() {
	now := core.GetTime()

	rampTimer.WakeTime = now + ticksOf(config.RampPeriod)
	rampTimer.Handler = rampTick
	core.ScheduleTimer(&rampTimer)

	controlTimer.WakeTime = now + ticksOf(config.ControlPeriod)
	controlTimer.Handler = controlTick
	core.ScheduleTimer(&controlTimer)

	failsafeTimer.WakeTime = now + ticksOf(config.FailsafeTickPeriod)
	failsafeTimer.Handler = failsafeTick
	core.ScheduleTimer(&failsafeTimer)

	heartbeatTimer.WakeTime = now + ticksOf(config.HeartbeatPeriod)
	heartbeatTimer.Handler = heartbeatTick
	core.ScheduleTimer(&heartbeatTimer)

	ledTimer.WakeTime = now + ticksOf(config.LEDBlinkPeriod)
	ledTimer.Handler = ledTick
	core.ScheduleTimer(&ledTimer)
}

func ticksOf(d time.Duration) uint32 {
	return core.TimerFromUS(uint32(d.Microseconds()))
}

func rampTick(t *core.Timer) uint8 {
	blocked := node.State.IsMovementBlocked()
	axis1.Ramp(blocked, dict.Axis1())
	axis2.Ramp(blocked, dict.Axis2())
	core.RecordTiming(core.EvtRampTick, 0, core.GetTime(), 0, 0)
	t.WakeTime += ticksOf(config.RampPeriod)
	return core.SF_RESCHEDULE
}

func controlTick(t *core.Timer) uint8 {
	blocked := node.State.IsMovementBlocked()
	axis1.Control(blocked, dict.Axis1())
	axis2.Control(blocked, dict.Axis2())
	core.IncrementStepCount()
	core.RecordTiming(core.EvtControlTick, 0, core.GetTime(), 0, 0)

	if tripped, reason := canFault.Tripped(); tripped {
		DebugPrintln("[MAIN] fault latched: " + itoaDigit(reason))
	}

	for _, frame := range node.Sync() {
		if can != nil {
			_ = can.Send(frame)
		}
	}

	t.WakeTime += ticksOf(config.ControlPeriod)
	return core.SF_RESCHEDULE
}

func failsafeTick(t *core.Timer) uint8 {
	node.State.GoToPreOperationalIfNeeded()
	node.State.DecrementSpeedCommandCounter()
	core.RecordTiming(core.EvtFailsafeTick, 0, core.GetTime(), 0, 0)
	t.WakeTime += ticksOf(config.FailsafeTickPeriod)
	return core.SF_RESCHEDULE
}

func heartbeatTick(t *core.Timer) uint8 {
	if can != nil {
		_ = can.Send(node.Heartbeat())
	}
	t.WakeTime += ticksOf(config.HeartbeatPeriod)
	return core.SF_RESCHEDULE
}

func ledTick(t *core.Timer) uint8 {
	statusLED.Set(!statusLED.Get())
	t.WakeTime += ticksOf(config.LEDBlinkPeriod)
	return core.SF_RESCHEDULE
}

func itoaDigit(n uint8) string {
	if n > 9 {
		return "?"
	}
	return string('0' + n)
}
