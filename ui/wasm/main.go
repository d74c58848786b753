//go:build js && wasm

// Command wasm is the browser-side decode/encode helper that pairs
// with host/web's live dashboard: it exposes the same canopen frame
// codec the firmware and host/canbus.Mirror use, compiled to
// WebAssembly, so a debugging page can decode raw CAN frame bytes
// (pasted from a bus trace, or captured by host/bench) without
// re-implementing the wire format a second time in JavaScript. Ported
// in idiom from the donor's wasm UI, which exposed its Klipper VLQ/CRC16
// codec the same way; this exposes the CANopen PDO/SDO/NMT codec
// instead, since that is this module's wire protocol.
package main

import (
	"encoding/hex"
	"syscall/js"

	"sm4/canopen"
	"sm4/config"
	"sm4/motion"
)

func main() {
	js.Global().Set("sm4Wasm", js.ValueOf(map[string]interface{}{
		"decodeTxPDO1":      js.FuncOf(decodeTxPDO1Wrapper),
		"decodeVelocityPDO": js.FuncOf(decodeVelocityPDOWrapper),
		"decodePositionPDO": js.FuncOf(decodePositionPDOWrapper),
		"decodeModeEnable":  js.FuncOf(decodeModeEnableWrapper),
		"parseFunctionCode": js.FuncOf(parseFunctionCodeWrapper),
		"encodeVelocityPDO": js.FuncOf(encodeVelocityPDOWrapper),
	}))

	select {}
}

// frameData extracts the 8-byte payload from a hex-encoded argument,
// returning ok=false (with the JS value to return) on any decode error.
func frameData(args []js.Value) (d [8]byte, errVal js.Value, ok bool) {
	if len(args) < 1 {
		return d, errResult("missing hex payload argument"), false
	}
	raw, err := hex.DecodeString(args[0].String())
	if err != nil {
		return d, errResult("invalid hex: " + err.Error()), false
	}
	if len(raw) != 8 {
		return d, errResult("payload must be 8 bytes"), false
	}
	copy(d[:], raw)
	return d, js.Value{}, true
}

func errResult(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// decodeTxPDO1Wrapper decodes TxPDO1 (battery voltage + temperature).
func decodeTxPDO1Wrapper(this js.Value, args []js.Value) interface{} {
	d, errVal, ok := frameData(args)
	if !ok {
		return errVal
	}
	battery, temp := canopen.DecodeTxPDO1(d)
	return js.ValueOf(map[string]interface{}{
		"battery_voltage": battery,
		"temperature":     temp,
	})
}

// decodeVelocityPDOWrapper decodes TxPDO2/RxPDO2 (per-axis rev/s).
func decodeVelocityPDOWrapper(this js.Value, args []js.Value) interface{} {
	d, errVal, ok := frameData(args)
	if !ok {
		return errVal
	}
	axis1, axis2 := canopen.DecodeVelocityPDO(d)
	return js.ValueOf(map[string]interface{}{
		"axis1_rps": axis1,
		"axis2_rps": axis2,
	})
}

// decodePositionPDOWrapper decodes TxPDO3/RxPDO3 or TxPDO4/RxPDO4. The
// resolution argument is the axis encoder's counts-per-revolution,
// needed to compute the relative-revolutions convenience field.
func decodePositionPDOWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("missing resolution argument")
	}
	d, errVal, ok := frameData(args[:1])
	if !ok {
		return errVal
	}
	resolution := uint32(args[1].Int())
	pos := canopen.DecodePositionPDO(resolution, d)
	return js.ValueOf(map[string]interface{}{
		"revolutions": pos.GetRevolutions(),
		"angle":       pos.GetAngle(),
		"relative":    pos.GetRelativeRevolutions(),
	})
}

// decodeModeEnableWrapper decodes RxPDO1's 2-byte mode/enable packing.
// Only the first 2 bytes of the supplied payload are consulted.
func decodeModeEnableWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("missing hex payload argument")
	}
	raw, err := hex.DecodeString(args[0].String())
	if err != nil || len(raw) < 2 {
		return errResult("payload must be at least 2 bytes")
	}
	var d [8]byte
	copy(d[:2], raw[:2])
	p := canopen.DecodeModeEnablePDO(d)
	return js.ValueOf(map[string]interface{}{
		"axis1_mode":    p.Axis1Mode == motion.ModePosition,
		"axis2_mode":    p.Axis2Mode == motion.ModePosition,
		"axis1_enabled": p.Axis1Enabled,
		"axis2_enabled": p.Axis2Enabled,
	})
}

// parseFunctionCodeWrapper classifies an 11-bit standard CAN ID into
// its CANopen function code and node ID.
func parseFunctionCodeWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("missing id argument")
	}
	id := uint16(args[0].Int())
	return js.ValueOf(map[string]interface{}{
		"function_code": int(canopen.ParseFunctionCode(id)),
		"node_id":       int(canopen.NodeID(id)),
	})
}

// encodeVelocityPDOWrapper builds an RxPDO2 frame (host -> device) and
// returns its standard ID plus hex payload, for pasting into a
// bus-trace replay tool. The node ID defaults to this board's
// configured CAN ID (config.CANID) but may be overridden with a third
// argument.
func encodeVelocityPDOWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("missing axis1/axis2 arguments")
	}
	axis1 := float32(args[0].Float())
	axis2 := float32(args[1].Float())
	nodeID := config.CANID
	if len(args) >= 3 {
		nodeID = uint16(args[2].Int())
	}
	frame := canopen.EncodeVelocityPDO(axis1, axis2)
	frame.ID = canopen.FrameID(canopen.FuncRxPDO2, nodeID)
	return js.ValueOf(map[string]interface{}{
		"id":      int(frame.ID),
		"payload": hex.EncodeToString(frame.Data[:frame.Length]),
	})
}
