package canopen

import "testing"

func TestParseFunctionCode(t *testing.T) {
	cases := map[uint16]FunctionCode{
		0x000: FuncNMTNodeControl,
		0x080: FuncSync,
		0x183: FuncTxPDO1,
		0x205: FuncRxPDO1,
		0x600 | 5: FuncRxSDO,
	}
	for id, want := range cases {
		if got := ParseFunctionCode(id); got != want {
			t.Errorf("ParseFunctionCode(%#x) = %#x, want %#x", id, got, want)
		}
	}
}

func TestFrameIDRoundTrip(t *testing.T) {
	id := FrameID(FuncTxPDO3, 5)
	if ParseFunctionCode(id) != FuncTxPDO3 {
		t.Fatalf("FrameID/ParseFunctionCode round trip broke function code")
	}
	if NodeID(id) != 5 {
		t.Fatalf("FrameID/NodeID round trip broke node id, got %d", NodeID(id))
	}
}
