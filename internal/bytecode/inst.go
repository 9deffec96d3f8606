// Package bytecode decodes, encodes and graphs JVM method bytecode.
package bytecode

import "fmt"

// Inst is one decoded bytecode instruction.
//
// Offset is the byte offset the instruction had when it was decoded or last
// laid out. It is not an identity: instructions are identified by their
// pointer and their position in the owning sequence. Instructions created
// with New have Offset -1 until the sequence is laid out again.
type Inst struct {
	Offset  int
	Op      Op
	Operand Operand // nil for instructions without operands
}

// New creates an instruction that is not yet part of any layout.
func New(op Op, operand Operand) *Inst {
	return &Inst{Offset: -1, Op: op, Operand: operand}
}

// Operand is the opcode-specific payload of an instruction. The set of
// implementations is closed.
type Operand interface {
	operand()
}

// Local is the slot operand of xload, xstore and ret. Wide is set when the
// instruction carries the wide prefix.
type Local struct {
	Slot uint16
	Wide bool
}

// Iinc is the operand of iinc.
type Iinc struct {
	Slot  uint16
	Delta int16
	Wide  bool
}

// Jump is the operand of conditional branches, goto and jsr. Delta is the
// encoded relative offset; Target is bound when the instruction graph is
// built or when a rewrite inserts a branch.
type Jump struct {
	Delta  int32
	Target *Inst
}

// Switch is the operand of tableswitch and lookupswitch. For tableswitch
// Keys holds Low..High. Targets are bound alongside the deltas.
type Switch struct {
	Default       int32
	Keys          []int32
	Deltas        []int32
	DefaultTarget *Inst
	Targets       []*Inst
}

// PoolRef is a constant pool index operand. Count carries the extra byte of
// invokeinterface (argument count) and multianewarray (dimensions).
type PoolRef struct {
	Index uint16
	Count uint8
}

// Immediate is the operand of bipush, sipush and newarray.
type Immediate struct {
	Value int32
}

func (*Local) operand()     {}
func (*Iinc) operand()      {}
func (*Jump) operand()      {}
func (*Switch) operand()    {}
func (*PoolRef) operand()   {}
func (*Immediate) operand() {}

// Caps returns the capability tags of the instruction.
func (in *Inst) Caps() Cap { return in.Op.Caps() }

// Slot returns the local variable slot the instruction reads or writes.
func (in *Inst) Slot() (int, bool) {
	if !in.Caps().Has(CapLocal) {
		return 0, false
	}
	if s, ok := implicitSlot(in.Op); ok {
		return s, true
	}
	switch o := in.Operand.(type) {
	case *Local:
		return int(o.Slot), true
	case *Iinc:
		return int(o.Slot), true
	}
	return 0, false
}

// SetSlot rewrites the slot of a local variable instruction, switching
// between the compact xload_n form, the one-byte form and the wide form as
// the new slot requires. The encoded size may change.
func (in *Inst) SetSlot(slot int) error {
	if slot < 0 || slot > 0xffff {
		return fmt.Errorf("bytecode: slot %d out of range", slot)
	}
	if !in.Caps().Has(CapLocal) {
		return fmt.Errorf("bytecode: %s has no local variable operand", in.Op)
	}
	if in.Op == IINC {
		o, _ := in.Operand.(*Iinc)
		if o == nil {
			o = &Iinc{}
			in.Operand = o
		}
		o.Slot = uint16(slot)
		o.Wide = slot > 0xff || o.Delta < -128 || o.Delta > 127
		return nil
	}
	if in.Op == RET {
		in.Operand = &Local{Slot: uint16(slot), Wide: slot > 0xff}
		return nil
	}
	base := explicitForm(in.Op)
	if op, ok := compactForm(base, slot); ok {
		in.Op = op
		in.Operand = nil
		return nil
	}
	in.Op = base
	in.Operand = &Local{Slot: uint16(slot), Wide: slot > 0xff}
	return nil
}

// LocalWidth returns the number of slots a local variable access covers:
// 2 for long and double loads and stores, 1 otherwise.
func (in *Inst) LocalWidth() int {
	k := -1
	switch op := explicitForm(in.Op); {
	case op >= ILOAD && op <= ALOAD:
		k = int(op - ILOAD)
	case op >= ISTORE && op <= ASTORE:
		k = int(op - ISTORE)
	}
	if k == 1 || k == 3 {
		return 2
	}
	return 1
}

// Targets returns the bound branch or switch targets in operand encoding
// order (switch default first). Unbound targets are nil.
func (in *Inst) Targets() []*Inst {
	switch o := in.Operand.(type) {
	case *Jump:
		return []*Inst{o.Target}
	case *Switch:
		return append([]*Inst{o.DefaultTarget}, o.Targets...)
	}
	return nil
}

// targetOffsets returns the absolute offsets encoded by the branch or
// switch deltas, in operand encoding order.
func (in *Inst) targetOffsets() []int {
	switch o := in.Operand.(type) {
	case *Jump:
		return []int{in.Offset + int(o.Delta)}
	case *Switch:
		out := make([]int, 0, len(o.Deltas)+1)
		out = append(out, in.Offset+int(o.Default))
		for _, d := range o.Deltas {
			out = append(out, in.Offset+int(d))
		}
		return out
	}
	return nil
}

func (in *Inst) String() string {
	switch o := in.Operand.(type) {
	case *Local:
		if o.Wide {
			return fmt.Sprintf("wide %s %d", in.Op, o.Slot)
		}
		return fmt.Sprintf("%s %d", in.Op, o.Slot)
	case *Iinc:
		if o.Wide {
			return fmt.Sprintf("wide iinc %d %d", o.Slot, o.Delta)
		}
		return fmt.Sprintf("iinc %d %d", o.Slot, o.Delta)
	case *Jump:
		if o.Target != nil && o.Target.Offset >= 0 {
			return fmt.Sprintf("%s %d", in.Op, o.Target.Offset)
		}
		return fmt.Sprintf("%s %+d", in.Op, o.Delta)
	case *Switch:
		return fmt.Sprintf("%s [%d cases]", in.Op, len(o.Keys))
	case *PoolRef:
		if o.Count != 0 {
			return fmt.Sprintf("%s #%d %d", in.Op, o.Index, o.Count)
		}
		return fmt.Sprintf("%s #%d", in.Op, o.Index)
	case *Immediate:
		return fmt.Sprintf("%s %d", in.Op, o.Value)
	}
	return in.Op.String()
}
