//go:build rp2040

// Package pio is the PIO-driven alternate firmware target: it implements
// motion.StepDriver (spec.md §4.C) using one RP2040 PIO state machine per
// axis for the step-pulse output instead of the primary target's TIM
// peripheral (targets/stm32f4/stepper.go), and one hardware PWM slice per
// axis for the current reference instead of a DAC channel.
package pio

import (
	"machine"

	"sm4/config"
	"sm4/motion"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildSquareWaveProgram assembles a 2-instruction continuous 50%-duty
// square wave generator: set the step pin high for one state-machine
// clock, then low for one. The step frequency is therefore controlled
// entirely by the state machine's clock divider (programmed at runtime
// by SetOutputFrequency), not by instruction delays or FIFO commands —
// unlike the donor's buildStepperProgram, this program never blocks on
// the TX FIFO and needs no per-move command word, since spec.md §4.C's
// step generator is a continuous frequency output, not a queue of
// discrete moves.
func buildSquareWaveProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Set(rp2pio.SetDestPins, 1).Encode(), // 0: set pins, 1
		asm.Set(rp2pio.SetDestPins, 0).Encode(), // 1: set pins, 0
		// .wrap
	}
}

const squareWaveOrigin = 0

// pclkHz is the RP2040 system clock PIO state machines run from,
// matching the donor's full-speed configuration (cfg.SetClkDivIntFrac
// with no division applied at the base rate).
const pclkHz = 125_000_000

// PIOStepDriver implements motion.StepDriver over one PIO state
// machine's step-pulse output and one hardware PWM slice's current
// reference. Grounded on donor PIOStepperBackend for the PIO
// program-loading and state-machine-configuration idiom, generalised
// from its move-queue command protocol to the frequency + direction +
// current contract motion.StepDriver requires.
type PIOStepDriver struct {
	sm        rp2pio.StateMachine
	pio       *rp2pio.PIO
	cfg       rp2pio.StateMachineConfig
	offset    uint8
	stepPin   machine.Pin
	dirPin    machine.Pin
	invertDir bool
	lastHz    uint32
	current   *pwmCurrentRef
}

// NewPIOStepDriver claims a state machine on the given PIO block,
// loads the square-wave program, and wires a hardware-PWM current
// reference on currentPin. pioNum selects PIO0/PIO1, smNum the state
// machine 0-3, matching the donor's pio/sm addressing scheme.
func NewPIOStepDriver(pioNum, smNum uint8, stepPin, dirPin, currentPin machine.Pin, invertDir bool) (*PIOStepDriver, error) {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	d := &PIOStepDriver{
		pio:       pioHW,
		sm:        pioHW.StateMachine(smNum),
		stepPin:   stepPin,
		dirPin:    dirPin,
		invertDir: invertDir,
	}

	d.sm.TryClaim()

	program := buildSquareWaveProgram()
	offset, err := d.pio.AddProgram(program, squareWaveOrigin)
	if err != nil {
		return nil, err
	}

	d.stepPin.Configure(machine.PinConfig{Mode: d.pio.PinMode()})
	d.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.dirPin.Low()

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(d.stepPin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0) // full speed; reprogrammed per-call by SetOutputFrequency
	d.cfg = cfg
	d.offset = offset

	d.sm.Init(offset, cfg)
	d.sm.SetPindirsConsecutive(d.stepPin, 1, true)
	d.sm.SetPinsConsecutive(d.stepPin, 1, false)
	// state machine stays disabled (frequency 0) until the first
	// SetOutputFrequency call, per spec.md §4.C's "zero frequency ->
	// timer paused" requirement.

	ref, err := newPWMCurrentRef(currentPin)
	if err != nil {
		return nil, err
	}
	d.current = ref

	return d, nil
}

// SetOutputFrequency implements motion.StepDriver. rps is in
// revolutions/second; direction is carried by its sign, matching
// targets/stm32f4's tmc2100Driver. The step-pulse rate is
// |rps|*MicrostepsPerRev*stepsPerRev, reprogrammed on the state
// machine's clock divider rather than a TIM prescaler/ARR pair —
// the PIO equivalent of the same "ticks/psc/arr" derivation.
func (d *PIOStepDriver) SetOutputFrequency(rps float32) {
	forward := rps >= 0
	if d.invertDir {
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

	if freq == 0 {
		d.sm.SetEnabled(false)
		return
	}

	// Two instructions per square-wave period (one high cycle, one
	// low cycle), so the state machine clock must run at 2*freq.
	smHz := uint64(freq) * 2
	divFixed := (uint64(pclkHz) << 8) / smHz // 16.8 fixed-point divider
	intDiv := uint16(divFixed >> 8)
	if intDiv == 0 {
		intDiv = 1
	}
	frac := uint8(divFixed & 0xFF)

	// Reprogramming the clock divider requires re-initialising the
	// state machine (Init rewrites the clkdiv register and restarts
	// the program counter at d.offset); this mirrors the donor's own
	// reconfigure-then-reinit pattern rather than relying on a
	// narrower clkdiv-only register poke this package has no confirmed
	// API for.
	d.cfg.SetClkDivIntFrac(intDiv, frac)
	d.sm.Init(d.offset, d.cfg)
	d.sm.SetEnabled(true)
}

// SetCurrent implements motion.StepDriver by forwarding to this
// axis's hardware-PWM current reference.
func (d *PIOStepDriver) SetCurrent(amps float32) {
	d.current.Set(amps)
}

var _ motion.StepDriver = (*PIOStepDriver)(nil)

// stepsPerRev is the stepper motor's full-step count per revolution,
// matching targets/stm32f4/stepper.go's constant.
const stepsPerRev = 200
