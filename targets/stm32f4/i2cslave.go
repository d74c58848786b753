//go:build stm32f4

package main

import (
	"machine"

	"sm4/i2creg"
)

// i2cSlaveLink drives i2creg.Slave's state machine from I2C1's slave
// (target) mode interrupt events. I2C1 is configured in 10-bit-address-
// disabled, 7-bit slave mode at i2creg.SlaveAddress, matching the
// donor's bare machine.I2C usage in core/i2c_hal.go but as a target
// rather than a controller.
type i2cSlaveLink struct {
	slave *i2creg.Slave
	bus   *machine.I2C
}

func newI2CSlaveLink(slave *i2creg.Slave, bus *machine.I2C) *i2cSlaveLink {
	link := &i2cSlaveLink{slave: slave, bus: bus}
	bus.SetTargetAddress(i2creg.SlaveAddress)
	bus.SetTargetListener(link.onEvent)
	return link
}

// onEvent is called by the machine package's I2C target-mode interrupt
// handler for every bus event it recognises. It forwards each one to
// i2creg.Slave, which owns the actual register-protocol state machine;
// this function's only job is translating machine's event shape into
// Slave's three-call contract (Start/ByteReceived-or-ReadRequested/Stop).
func (l *i2cSlaveLink) onEvent(event machine.I2CTargetEvent, b byte) (response byte, ack bool) {
	switch event {
	case machine.I2CTargetStartRead:
		l.slave.Start(true)
		v, ok := l.slave.ReadRequested()
		return v, ok

	case machine.I2CTargetStartWrite:
		l.slave.Start(false)
		return 0, true

	case machine.I2CTargetRxData:
		l.slave.ByteReceived(b)
		return 0, true

	case machine.I2CTargetTxContinue:
		v, ok := l.slave.ReadRequested()
		return v, ok

	case machine.I2CTargetStop:
		l.slave.Stop()
		return 0, true

	case machine.I2CTargetError:
		l.slave.BusError()
		return 0, false

	default:
		return 0, false
	}
}
