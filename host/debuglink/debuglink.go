// Package debuglink is a host-side client for the board's USB debug
// envelope (spec.md §4.K): it opens the CDC-ACM serial device the
// firmware's usbdebug link answers on and issues Request/Transfer
// envelopes against the object dictionary, using the same
// sm4/usbdebug codec the firmware shares. Grounded on donor
// host/serial's tarm/serial wrapper (the donor's only consumer of that
// dependency, removed along with host/mcu's Klipper command-dictionary
// session in the final adaptation pass) — this package gives
// tarm/serial its replacement caller, opening the debug link's
// CDC-ACM port instead of a Klipper MCU's.
package debuglink

import (
	"fmt"
	"time"

	"github.com/tarm/serial"

	"sm4/usbdebug"
)

// Link is a synchronous request/reply client over one serial port.
type Link struct {
	port *serial.Port
	recv *usbdebug.Receiver
}

// Open opens device at baud and returns a Link ready to issue
// requests. readTimeout bounds how long Read blocks waiting for the
// board's reply.
func Open(device string, baud int, readTimeout time.Duration) (*Link, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("debuglink: open %s: %w", device, err)
	}
	return &Link{port: port, recv: usbdebug.NewReceiver()}, nil
}

// Close closes the underlying serial port.
func (l *Link) Close() error {
	return l.port.Close()
}

// Read issues a Request envelope for (index, subindex) and returns the
// 4-byte value from the board's Transfer reply.
func (l *Link) Read(index uint16, subindex uint8) ([4]byte, error) {
	var out [4]byte
	if _, err := l.port.Write(usbdebug.EncodeRequest(index, subindex)); err != nil {
		return out, fmt.Errorf("debuglink: write request: %w", err)
	}
	msg, err := l.awaitReply()
	if err != nil {
		return out, err
	}
	copy(out[:], msg.Data)
	return out, nil
}

// Write issues a Transfer envelope writing value to (index, subindex)
// and waits for the board's acknowledging Transfer reply.
func (l *Link) Write(index uint16, subindex uint8, value [4]byte) error {
	frame, err := usbdebug.EncodeTransfer(index, subindex, value[:])
	if err != nil {
		return err
	}
	if _, err := l.port.Write(frame); err != nil {
		return fmt.Errorf("debuglink: write transfer: %w", err)
	}
	_, err = l.awaitReply()
	return err
}

// awaitReply reads bytes one at a time until the Receiver decodes a
// complete envelope of either kind, matching the firmware's own byte-at-a-
// time Receiver.Push usage (targets/stm32f4/usbdebug.go).
func (l *Link) awaitReply() (usbdebug.Message, error) {
	var b [1]byte
	for {
		n, err := l.port.Read(b[:])
		if err != nil {
			return usbdebug.Message{}, fmt.Errorf("debuglink: read: %w", err)
		}
		if n == 0 {
			continue
		}
		msg, ok, err := l.recv.Push(b[0])
		if err != nil {
			return usbdebug.Message{}, fmt.Errorf("debuglink: %w", err)
		}
		if ok {
			return msg, nil
		}
	}
}
