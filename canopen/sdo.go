package canopen

import "sm4/objdict"

// Local names for the object-dictionary addressing used by the SDO
// dispatch below.
type ObjectIndex = objdict.ObjectIndex

const (
	IndexEnvironment  = objdict.IndexEnvironment
	IndexAxis1        = objdict.IndexAxis1
	IndexAxis2        = objdict.IndexAxis2
	SubBatteryVoltage = objdict.SubBatteryVoltage
	SubTemperature    = objdict.SubTemperature
)

// sdoCommandByte decodes the command-specifier byte of an expedited
// SDO frame. Ported from original_source's SDO command-byte bitfield
// parsing in update_object_dictionary.
type sdoCommandByte struct {
	ccs uint8 // client command specifier
	n   uint8 // unused-byte count (4-size)
	e   bool  // expedited
	s   bool  // size-in-command
}

func parseSDOCommand(b byte) sdoCommandByte {
	return sdoCommandByte{
		ccs: (b >> 5) & 0x7,
		n:   (b >> 2) & 0x3,
		e:   (b>>1)&1 != 0,
		s:   b&1 != 0,
	}
}

const (
	sdoDownload uint8 = 1
	sdoUpload   uint8 = 2

	// Reply command-specifier bytes, ported from the literal
	// constants update_object_dictionary replies with.
	sdoDownloadAck byte = 0b0110_0000
	sdoUploadReply byte = 0b0100_0000
)

// HandleSDO processes one expedited SDO request frame against dict and
// returns the TxSDO reply frame to send, and whether a reply should be
// sent at all (non-expedited or size-not-in-command requests are
// silently dropped per spec.md §4.I).
func HandleSDO(dict *objdict.PersistentObjectDictionary, req Frame) (Frame, bool) {
	if req.Length < 8 {
		return Frame{}, false
	}
	cmd := parseSDOCommand(req.Data[0])
	if !cmd.e || !cmd.s {
		return Frame{}, false
	}

	index := ObjectIndex(uint16(req.Data[1]) | uint16(req.Data[2])<<8)
	subindex := req.Data[3]

	switch cmd.ccs {
	case sdoDownload:
		length := 4 - cmd.n
		writeDictionary(dict, index, subindex, req.Data[4:4+length])
		return sdoReply(sdoDownloadAck, index, subindex, [4]byte{}), true
	case sdoUpload:
		value := readDictionary(dict, index, subindex)
		return sdoReply(sdoUploadReply, index, subindex, value), true
	default:
		return Frame{}, false
	}
}

func sdoReply(command byte, index ObjectIndex, subindex uint8, value [4]byte) Frame {
	var f Frame
	f.Length = 8
	f.Data[0] = command
	f.Data[1] = byte(index)
	f.Data[2] = byte(index >> 8)
	f.Data[3] = subindex
	copy(f.Data[4:8], value[:])
	return f
}

// writeDictionary dispatches a 4-(or fewer)-byte expedited SDO write.
// Writes to read-only axis fields still produce a positive
// acknowledgement on the wire — the caller in HandleSDO always replies
// with sdoDownloadAck regardless of what happens here — matching
// original_source's observed (if surprising) behaviour, see DESIGN.md.
func writeDictionary(dict *objdict.PersistentObjectDictionary, index ObjectIndex, subindex uint8, data []byte) {
	var raw [4]byte
	copy(raw[:], data)
	value := bytesToF32(raw)

	switch index {
	case IndexEnvironment:
		// Environment object has no writable fields.
	case IndexAxis1, IndexAxis2:
		key, ok := objdict.ParseAxisKey(subindex)
		if !ok || key.ReadOnly() {
			return
		}
		dict.WriteAxisField(axisNumberFor(index), key, value)
	}
}

// readDictionary dispatches an expedited SDO read, returning the raw
// 4-byte LE payload.
func readDictionary(dict *objdict.PersistentObjectDictionary, index ObjectIndex, subindex uint8) [4]byte {
	switch index {
	case IndexEnvironment:
		switch subindex {
		case SubBatteryVoltage:
			return f32ToBytes(dict.BatteryVoltage())
		case SubTemperature:
			return f32ToBytes(dict.Temperature())
		}
	case IndexAxis1, IndexAxis2:
		if key, ok := objdict.ParseAxisKey(subindex); ok {
			return f32ToBytes(dict.ReadAxisField(axisNumberFor(index), key))
		}
	}
	return [4]byte{}
}

func axisNumberFor(index ObjectIndex) int {
	if index == IndexAxis2 {
		return 2
	}
	return 1
}

func bytesToF32(b [4]byte) float32 {
	return getF32(b[:])
}

func f32ToBytes(v float32) [4]byte {
	var b [4]byte
	putF32(b[:], v)
	return b
}
