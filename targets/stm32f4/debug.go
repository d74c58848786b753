//go:build stm32f4

package main

import "machine"

// DebugPrintln matches the donor targets/rp2350/debug.go's UART debug
// writer shape: one dedicated UART, no framing, newline-terminated.
// Here it is UART2 (the Nucleo-F401's ST-LINK virtual COM port) rather
// than a second USB-adjacent UART, since this board's only USB
// peripheral carries the debug envelope protocol (usbdebug), not a
// second serial console.
var (
	debugUART    *machine.UART
	debugEnabled bool
)

// InitDebugUART brings up the ST-LINK VCP UART at 115200 8N1.
func InitDebugUART() {
	debugUART = machine.UART2
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.PA2,
		RX:       machine.PA3,
	})
	if err != nil {
		debugEnabled = false
		return
	}
	debugEnabled = true
	DebugPrintln("=== stm32f4 debug UART initialized ===")
}

// DebugPrintln writes one line to the debug UART. No-op if the UART
// failed to configure, matching the donor's fail-soft behaviour.
func DebugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
