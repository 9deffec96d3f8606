package bytecode

import (
	"bytes"
	"errors"
	"testing"
)

func TestInstructions_InsertRelayout(t *testing.T) {
	seq := NewInstructions(mustDecode(t, branchy))
	if _, err := seq.BuildGraph(nil); err != nil {
		t.Fatal(err)
	}
	if err := seq.Insert(0, New(NOP, nil)); err != nil {
		t.Fatal(err)
	}
	if seq.Graph() != nil {
		t.Error("graph should be dropped after Insert")
	}
	if !seq.Stale() {
		t.Error("sequence should be stale after Insert")
	}
	if _, err := seq.BuildGraph(nil); !errors.Is(err, ErrStale) {
		t.Errorf("BuildGraph on a stale sequence: err = %v, want ErrStale", err)
	}

	asm, err := seq.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := append([]byte{0x00}, branchy...)
	if !bytes.Equal(asm.Code, want) {
		t.Errorf("code = % x, want % x", asm.Code, want)
	}
	if got := asm.PC(8); got != 9 {
		t.Errorf("PC(8) = %d, want 9", got)
	}
	if got := asm.PC(10); got != 11 {
		t.Errorf("PC(end) = %d, want 11", got)
	}

	g, err := seq.BuildGraph(nil)
	if err != nil {
		t.Fatalf("BuildGraph after relayout: %v", err)
	}
	checkSuccs(t, g, 2, []edgeWant{{5, EdgeBranch}, {3, EdgeFall}})
}

func TestInstructions_InsertBeforeSwitch(t *testing.T) {
	code := []byte{
		0x1a,
		0xaa, 0x00, 0x00,
		0x00, 0x00, 0x00, 29,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 27,
		0x00, 0x00, 0x00, 28,
		0x00, 0x00, 0x00, 27,
		0x00, 0x00, 0xb1,
	}
	seq := NewInstructions(mustDecode(t, code))
	if err := seq.Insert(0, New(NOP, nil)); err != nil {
		t.Fatal(err)
	}
	asm, err := seq.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// The switch moves to offset 2 and loses one padding byte, so the
	// instructions after it keep their offsets.
	if len(asm.Code) != len(code) {
		t.Fatalf("len = %d, want %d", len(asm.Code), len(code))
	}
	again := mustDecode(t, asm.Code)
	if got, want := offsets(again), []int{0, 1, 2, 28, 29, 30}; !equalInts(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	g, err := BuildGraph(again, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkSuccs(t, g, 2, []edgeWant{{5, EdgeDefault}, {3, EdgeCase}, {4, EdgeCase}, {3, EdgeCase}})
}

func TestInstructions_RemoveTarget(t *testing.T) {
	insts := mustDecode(t, branchy)
	seq := NewInstructions(insts)
	if _, err := seq.BuildGraph(nil); err != nil {
		t.Fatal(err)
	}
	target := insts[4]
	if err := seq.Remove(target); err != nil {
		t.Fatal(err)
	}
	if _, err := seq.Encode(); !errors.Is(err, ErrDanglingTarget) {
		t.Errorf("Encode err = %v, want ErrDanglingTarget", err)
	}
	if err := seq.Remove(target); !errors.Is(err, ErrNotInSequence) {
		t.Errorf("second Remove err = %v, want ErrNotInSequence", err)
	}
}

func TestInstructions_FailedEncodeKeepsLayout(t *testing.T) {
	decoded := mustDecode(t, branchy)
	insts := append([]*Inst(nil), decoded...)
	seq := NewInstructions(decoded)
	var before []int
	var deltas []int32
	for _, in := range insts {
		before = append(before, in.Offset)
		if j, ok := in.Operand.(*Jump); ok {
			deltas = append(deltas, j.Delta)
		}
	}

	bad := New(GOTO, &Jump{Target: New(NOP, nil)})
	if err := seq.Insert(0, bad); err != nil {
		t.Fatal(err)
	}
	if _, err := seq.Encode(); !errors.Is(err, ErrDanglingTarget) {
		t.Fatalf("Encode err = %v, want ErrDanglingTarget", err)
	}
	if bad.Offset != -1 {
		t.Errorf("inserted goto offset = %d, want -1", bad.Offset)
	}
	var k int
	for i, in := range insts {
		if in.Offset != before[i] {
			t.Errorf("inst %d offset = %d, want %d", i, in.Offset, before[i])
		}
		if j, ok := in.Operand.(*Jump); ok {
			if j.Delta != deltas[k] {
				t.Errorf("inst %d delta = %d, want %d", i, j.Delta, deltas[k])
			}
			k++
		}
	}

	if err := seq.Remove(bad); err != nil {
		t.Fatal(err)
	}
	asm, err := seq.Encode()
	if err != nil {
		t.Fatalf("Encode after removing the goto: %v", err)
	}
	if !bytes.Equal(asm.Code, branchy) {
		t.Errorf("code = % x, want % x", asm.Code, branchy)
	}
	if got := asm.PC(8); got != 8 {
		t.Errorf("PC(8) = %d, want 8", got)
	}
}

func TestInstructions_Replace(t *testing.T) {
	insts := mustDecode(t, branchy)
	seq := NewInstructions(insts)
	if _, err := seq.BuildGraph(nil); err != nil {
		t.Fatal(err)
	}
	repl := New(ICONST_3, nil)
	if err := seq.Replace(insts[4], repl); err != nil {
		t.Fatal(err)
	}
	if j := insts[1].Operand.(*Jump); j.Target != repl {
		t.Error("ifeq not retargeted to the replacement")
	}
	asm, err := seq.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if asm.Code[8] != byte(ICONST_3) {
		t.Errorf("code[8] = 0x%02x, want iconst_3", asm.Code[8])
	}
}

func TestInstructions_NewBranch(t *testing.T) {
	ret := New(RETURN, nil)
	seq := NewInstructions(nil)
	seq.Append(New(GOTO, &Jump{Target: ret}))
	seq.Append(New(NOP, nil))
	seq.Append(ret)
	asm, err := seq.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0xa7, 0x00, 0x04, 0x00, 0xb1}; !bytes.Equal(asm.Code, want) {
		t.Errorf("code = % x, want % x", asm.Code, want)
	}
}

func TestFilterLocal(t *testing.T) {
	// iload_1; istore_2; iinc 1 1; iload 1; aload_0; return
	insts := mustDecode(t, []byte{0x1b, 0x3d, 0x84, 0x01, 0x01, 0x15, 0x01, 0x2a, 0xb1})
	got := FilterLocal(insts, 1)
	if len(got) != 3 || got[0] != insts[0] || got[1] != insts[2] || got[2] != insts[3] {
		t.Errorf("FilterLocal(1) = %v", got)
	}
	if got := FilterLocal(insts, 0); len(got) != 1 || got[0] != insts[4] {
		t.Errorf("FilterLocal(0) = %v", got)
	}
	none := FilterLocal(insts, 7)
	if none == nil || len(none) != 0 {
		t.Errorf("FilterLocal(7) = %#v, want empty non-nil", none)
	}
}

func TestSetSlot(t *testing.T) {
	tests := []struct {
		op       Op
		slot     int
		wantOp   Op
		wantSize int
	}{
		{ILOAD_0 + 1, 5, ILOAD, 2},
		{ILOAD_0 + 1, 300, ILOAD, 4},
		{ILOAD, 2, ILOAD_0 + 2, 1},
		{ASTORE_3, 0, ASTORE_0, 1},
		{ALOAD, 3, ALOAD_3, 1},
	}
	for _, tc := range tests {
		in := &Inst{Op: tc.op}
		if _, ok := implicitSlot(tc.op); !ok {
			in.Operand = &Local{}
		}
		if err := in.SetSlot(tc.slot); err != nil {
			t.Errorf("%s.SetSlot(%d): %v", tc.op, tc.slot, err)
			continue
		}
		if in.Op != tc.wantOp {
			t.Errorf("%s.SetSlot(%d) op = %s, want %s", tc.op, tc.slot, in.Op, tc.wantOp)
		}
		if s, _ := in.Slot(); s != tc.slot {
			t.Errorf("%s.SetSlot(%d) slot = %d", tc.op, tc.slot, s)
		}
		if got := in.Size(0); got != tc.wantSize {
			t.Errorf("%s.SetSlot(%d) size = %d, want %d", tc.op, tc.slot, got, tc.wantSize)
		}
	}

	if err := (&Inst{Op: NOP}).SetSlot(1); err == nil {
		t.Error("SetSlot on nop should fail")
	}
}

func TestFormat(t *testing.T) {
	insts := mustDecode(t, guarded)
	out := Format(insts, func(uint16) string { return "Foo.bar()V" })
	want := "" +
		"     0: aload_0\n" +
		"     1: invokevirtual #2  ; Foo.bar()V\n" +
		"     4: pop\n" +
		"     5: goto 11\n" +
		"     8: iconst_1\n" +
		"     9: ireturn\n" +
		"    10: astore_1\n" +
		"    11: return\n"
	if out != want {
		t.Errorf("Format:\n%s\nwant:\n%s", out, want)
	}
}
