//go:build stm32f4

package main

import (
	"machine"

	"sm4/canopen"
	"sm4/objdict"
	"sm4/usbdebug"
)

// usbDebugLink feeds bytes arriving on the USB CDC endpoint into a
// usbdebug.Receiver and answers each decoded envelope against the
// object dictionary. It reuses canopen.HandleSDO's read/write dispatch
// against a synthetic expedited-SDO Frame rather than re-implementing
// the index/subindex-to-field mapping a second time: the USB debug
// envelope and the CANopen SDO wire format address exactly the same
// (index, subindex) space, just with a different framing, so building
// one throwaway Frame per envelope is cheaper than forking the logic.
type usbDebugLink struct {
	recv *usbdebug.Receiver
	dict *objdict.PersistentObjectDictionary
}

func newUSBDebugLink(dict *objdict.PersistentObjectDictionary) *usbDebugLink {
	return &usbDebugLink{recv: usbdebug.NewReceiver(), dict: dict}
}

// Poll drains whatever bytes machine.Serial (USB CDC) has buffered,
// answering any complete envelope it decodes. It never blocks.
func (l *usbDebugLink) Poll() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return
		}
		msg, ok, err := l.recv.Push(b)
		if !ok {
			continue
		}
		if err != nil {
			continue // malformed envelope: discarded without logging
		}
		l.handle(msg)
	}
}

func (l *usbDebugLink) handle(msg usbdebug.Message) {
	switch msg.Kind {
	case usbdebug.KindRequest:
		req := sdoUploadFrame(msg.Index, msg.Subindex)
		reply, ok := canopen.HandleSDO(l.dict, req)
		if !ok {
			return
		}
		out, err := usbdebug.EncodeTransfer(msg.Index, msg.Subindex, reply.Data[4:8])
		if err != nil {
			return
		}
		machine.Serial.Write(out)

	case usbdebug.KindTransfer:
		req := sdoDownloadFrame(msg.Index, msg.Subindex, msg.Data)
		canopen.HandleSDO(l.dict, req)
	}
}

// sdoUploadFrame and sdoDownloadFrame build the same 8-byte expedited
// SDO command layout canopen.HandleSDO parses off the wire (command
// byte, index LE, subindex, 4 data bytes), so that package's existing
// dispatch logic can be reused verbatim instead of duplicated here.
func sdoUploadFrame(index uint16, subindex uint8) canopen.Frame {
	var f canopen.Frame
	f.Length = 8
	f.Data[0] = 0b0100_0011 // ccs=upload(2), e=1, s=1
	f.Data[1] = byte(index)
	f.Data[2] = byte(index >> 8)
	f.Data[3] = subindex
	return f
}

func sdoDownloadFrame(index uint16, subindex uint8, data []byte) canopen.Frame {
	var f canopen.Frame
	f.Length = 8
	f.Data[0] = 0b0010_0011 // ccs=download(1), e=1, s=1
	f.Data[1] = byte(index)
	f.Data[2] = byte(index >> 8)
	f.Data[3] = subindex
	copy(f.Data[4:8], data)
	return f
}
