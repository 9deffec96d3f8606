package bytecode

import (
	"bytes"
	"errors"
	"testing"
)

func mustDecode(t *testing.T, code []byte) []*Inst {
	t.Helper()
	insts, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return insts
}

func offsets(insts []*Inst) []int {
	out := make([]int, len(insts))
	for i, in := range insts {
		out[i] = in.Offset
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// branchy is: 0 iconst_0; 1 ifeq 8; 4 iconst_1; 5 goto 9; 8 iconst_2; 9 return
var branchy = []byte{0x03, 0x99, 0x00, 0x07, 0x04, 0xa7, 0x00, 0x04, 0x05, 0xb1}

func TestDecode_Offsets(t *testing.T) {
	insts := mustDecode(t, branchy)
	if got, want := offsets(insts), []int{0, 1, 4, 5, 8, 9}; !equalInts(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	ops := []Op{ICONST_0, IFEQ, ICONST_1, GOTO, ICONST_2, RETURN}
	for i, op := range ops {
		if insts[i].Op != op {
			t.Errorf("inst %d op = %s, want %s", i, insts[i].Op, op)
		}
	}
	if j := insts[1].Operand.(*Jump); j.Delta != 7 {
		t.Errorf("ifeq delta = %d, want 7", j.Delta)
	}
}

func TestDecode_TableSwitchPadding(t *testing.T) {
	// 0 iload_0; 1 tableswitch (pad 2) default 30, 0:28 1:29 2:28; 28 nop; 29 nop; 30 return
	code := []byte{
		0x1a,
		0xaa, 0x00, 0x00,
		0x00, 0x00, 0x00, 29, // default
		0x00, 0x00, 0x00, 0x00, // low
		0x00, 0x00, 0x00, 0x02, // high
		0x00, 0x00, 0x00, 27,
		0x00, 0x00, 0x00, 28,
		0x00, 0x00, 0x00, 27,
		0x00, 0x00, 0xb1,
	}
	insts := mustDecode(t, code)
	if got, want := offsets(insts), []int{0, 1, 28, 29, 30}; !equalInts(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	sw := insts[1].Operand.(*Switch)
	if len(sw.Keys) != 3 || sw.Keys[0] != 0 || sw.Keys[2] != 2 {
		t.Errorf("keys = %v, want [0 1 2]", sw.Keys)
	}
	if sw.Default != 29 {
		t.Errorf("default = %d, want 29", sw.Default)
	}
	if got := insts[1].Size(1); got != 27 {
		t.Errorf("size = %d, want 27", got)
	}
}

func TestDecode_LookupSwitch(t *testing.T) {
	// 0 lookupswitch (pad 3) default 29, {-1: 28, 100: 29}; 28 nop; 29 return
	code := []byte{
		0xab, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 29,
		0x00, 0x00, 0x00, 0x02,
		0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 28,
		0x00, 0x00, 0x00, 100, 0x00, 0x00, 0x00, 29,
		0x00, 0xb1,
	}
	insts := mustDecode(t, code)
	if got, want := offsets(insts), []int{0, 28, 29}; !equalInts(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	sw := insts[0].Operand.(*Switch)
	if sw.Keys[0] != -1 || sw.Keys[1] != 100 {
		t.Errorf("keys = %v, want [-1 100]", sw.Keys)
	}
}

func TestDecode_Wide(t *testing.T) {
	code := []byte{0xc4, 0x15, 0x01, 0x00, 0xc4, 0x84, 0x00, 0x05, 0xff, 0xfe, 0xb1}
	insts := mustDecode(t, code)
	if len(insts) != 3 {
		t.Fatalf("got %d insts, want 3", len(insts))
	}
	if s, ok := insts[0].Slot(); !ok || s != 256 {
		t.Errorf("wide iload slot = %d, %v; want 256", s, ok)
	}
	inc := insts[1].Operand.(*Iinc)
	if inc.Slot != 5 || inc.Delta != -2 || !inc.Wide {
		t.Errorf("wide iinc = %+v", inc)
	}
	if insts[2].Offset != 10 {
		t.Errorf("return offset = %d, want 10", insts[2].Offset)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want error
		off  int
	}{
		{"truncated bipush", []byte{0x00, 0x10}, ErrTruncated, 1},
		{"bad opcode", []byte{0x00, 0x00, 0xfe}, ErrBadOpcode, 2},
		{"wide goto", []byte{0xc4, 0xa7, 0x00, 0x00}, ErrBadOpcode, 0},
		{"truncated switch pad", []byte{0x00, 0xaa, 0x00}, ErrTruncated, 1},
		{"inverted tableswitch", []byte{0xaa, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0, 1}, ErrBadSwitch, 0},
	}
	for _, tc := range tests {
		_, err := Decode(tc.code)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
			continue
		}
		var oe *OffsetError
		if !errors.As(err, &oe) || oe.Offset != tc.off {
			t.Errorf("%s: err = %v, want offset %d", tc.name, err, tc.off)
		}
	}
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	codes := map[string][]byte{
		"branchy": branchy,
		"invokes": {
			0x2a,                   // aload_0
			0xb7, 0x00, 0x01, // invokespecial #1
			0xb9, 0x00, 0x02, 0x01, 0x00, // invokeinterface #2 1
			0xba, 0x00, 0x03, 0x00, 0x00, // invokedynamic #3
			0xc5, 0x00, 0x04, 0x02, // multianewarray #4 2
			0x12, 0x05, // ldc #5
			0x14, 0x00, 0x06, // ldc2_w #6
			0x10, 0xfb, // bipush -5
			0x11, 0x80, 0x00, // sipush -32768
			0xbc, 0x0a, // newarray int
			0xc8, 0xff, 0xff, 0xff, 0xe2, // goto_w -30
		},
		"wide": {0xc4, 0x36, 0x00, 0x03, 0xc4, 0xa9, 0x01, 0x00, 0x00},
	}
	for name, code := range codes {
		insts := mustDecode(t, code)
		asm, err := Encode(insts)
		if err != nil {
			t.Errorf("%s: Encode: %v", name, err)
			continue
		}
		if !bytes.Equal(asm.Code, code) {
			t.Errorf("%s: re-encoded\n% x\nwant\n% x", name, asm.Code, code)
		}
	}
}
