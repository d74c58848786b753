package canopen

import (
	"sm4/objdict"
	"testing"
)

func sdoUploadFrame(index ObjectIndex, subindex uint8) Frame {
	var f Frame
	f.Length = 8
	f.Data[0] = 0b0100_0011 // ccs=2 (upload), e=1, s=1
	f.Data[1] = byte(index)
	f.Data[2] = byte(index >> 8)
	f.Data[3] = subindex
	return f
}

func sdoDownloadFrame(index ObjectIndex, subindex uint8, value [4]byte) Frame {
	var f Frame
	f.Length = 8
	f.Data[0] = 0b0010_0011 // ccs=1 (download), e=1, s=1, n=0
	f.Data[1] = byte(index)
	f.Data[2] = byte(index >> 8)
	f.Data[3] = subindex
	copy(f.Data[4:8], value[:])
	return f
}

func TestHandleSDODownloadWritesAndAcks(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())

	want := f32ToBytes(42.5)
	reply, ok := HandleSDO(dict, sdoDownloadFrame(IndexAxis1, uint8(objdict.KeyAcceleration), want))
	if !ok {
		t.Fatalf("HandleSDO() should reply to a well-formed expedited download")
	}
	if reply.Data[0] != sdoDownloadAck {
		t.Fatalf("download reply command byte = %#x, want %#x", reply.Data[0], sdoDownloadAck)
	}
	if got := dict.Axis1().Acceleration(); got != 42.5 {
		t.Fatalf("Axis1().Acceleration() after SDO download = %v, want 42.5", got)
	}
}

func TestHandleSDOUploadReadsValue(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())
	dict.Axis2().SetAcceleration(7.0)

	reply, ok := HandleSDO(dict, sdoUploadFrame(IndexAxis2, uint8(objdict.KeyAcceleration)))
	if !ok {
		t.Fatalf("HandleSDO() should reply to a well-formed expedited upload")
	}
	if reply.Data[0] != sdoUploadReply {
		t.Fatalf("upload reply command byte = %#x, want %#x", reply.Data[0], sdoUploadReply)
	}
	if got := bytesToF32([4]byte{reply.Data[4], reply.Data[5], reply.Data[6], reply.Data[7]}); got != 7.0 {
		t.Fatalf("upload reply value = %v, want 7.0", got)
	}
}

func TestHandleSDOWriteToReadOnlyFieldStillAcks(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())

	reply, ok := HandleSDO(dict, sdoDownloadFrame(IndexAxis1, uint8(objdict.KeyActualVelocity), f32ToBytes(99)))
	if !ok || reply.Data[0] != sdoDownloadAck {
		t.Fatalf("write to a read-only field must still produce a positive ack (spec.md source-parity bug)")
	}
	if dict.Axis1().ActualVelocity() == 99 {
		t.Fatalf("write to a read-only field must not actually change its value")
	}
}

func TestHandleSDODropsNonExpeditedRequests(t *testing.T) {
	dict := objdict.LoadPersistentObjectDictionary(3200, newNopStore())

	var f Frame
	f.Length = 8
	f.Data[0] = 0b0010_0000 // e=0: segmented, not handled
	f.Data[1] = byte(IndexAxis1)
	f.Data[3] = uint8(objdict.KeyAcceleration)

	if _, ok := HandleSDO(dict, f); ok {
		t.Fatalf("HandleSDO() should silently drop a non-expedited request")
	}
}

// nopStore is a PersistentStore that reports every key absent, forcing
// config defaults to load.
type nopStore struct{}

func newNopStore() *nopStore { return &nopStore{} }

func (nopStore) ReadF32(uint16) (float32, bool)  { return 0, false }
func (nopStore) WriteF32(uint16, float32) error  { return nil }
func (nopStore) Read(uint16) (uint32, bool)      { return 0, false }
func (nopStore) Write(uint16, uint32) error      { return nil }
