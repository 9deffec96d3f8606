package classfile

import (
	"fmt"

	"jdeob/internal/byteio"
	"jdeob/internal/bytecode"
)

// Code is a method's Code attribute: the instruction sequence, the
// exception table and the nested attributes.
//
// The instruction graph is derived from the sequence and cached in it.
// Mutating the sequence drops the graph; BuildInstructionGraph lays the
// code out again and rebuilds it.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16
	Handlers  []bytecode.Handler
	Attrs     Attributes

	insts *bytecode.Instructions
	raw   []byte // code array matching the current layout, nil when stale
}

// NewCode creates a Code attribute for a synthetic method.
func NewCode(maxStack, maxLocals uint16, insts []*bytecode.Inst) *Code {
	return &Code{MaxStack: maxStack, MaxLocals: maxLocals, insts: bytecode.NewInstructions(insts)}
}

func (*Code) Type() AttrType { return AttrCode }

// Instructions returns the mutable instruction sequence.
func (c *Code) Instructions() *bytecode.Instructions { return c.insts }

// Graph returns the instruction graph and whether it is current. It is
// not current before the first build or after any mutation.
func (c *Code) Graph() (*bytecode.Graph, bool) {
	g := c.insts.Graph()
	return g, g != nil
}

// BuildInstructionGraph builds the instruction graph, replacing any
// previous one. A mutated sequence is laid out first, which rewrites the
// offsets of handlers and debug tables.
func (c *Code) BuildInstructionGraph() error {
	if err := c.relayout(); err != nil {
		return err
	}
	_, err := c.insts.BuildGraph(c.Handlers)
	return err
}

// CatchType resolves the class a handler catches. A catch-all handler
// resolves to "".
func (c *Code) CatchType(st SymbolTable, h bytecode.Handler) (string, error) {
	if h.CatchType == 0 {
		return "", nil
	}
	return st.ClassName(h.CatchType)
}

// LocalVariables returns the LocalVariableTable, or nil.
func (c *Code) LocalVariables() *LocalVariableTable {
	for _, a := range c.Attrs.All() {
		if t, ok := a.(*LocalVariableTable); ok && !t.Typed {
			return t
		}
	}
	return nil
}

// LineNumbers returns the LineNumberTable, or nil.
func (c *Code) LineNumbers() *LineNumberTable {
	t, _ := c.Attrs.Find(AttrLineNumberTable).(*LineNumberTable)
	return t
}

// relayout re-encodes a mutated sequence and moves every code offset held
// outside the instructions to the new layout.
//
// Code that was never laid out (built with NewCode from New instructions)
// has no old layout to map from; its handler and debug table offsets are
// taken to describe the layout Encode produces.
func (c *Code) relayout() error {
	if c.raw != nil && !c.insts.Stale() {
		return nil
	}
	fresh := c.raw == nil && !laidOut(c.insts.List())
	asm, err := c.insts.Encode()
	if err != nil {
		return err
	}
	c.raw = asm.Code
	if fresh {
		return nil
	}

	pc := func(old uint16) uint16 { return uint16(asm.PC(int(old))) }
	for i := range c.Handlers {
		h := &c.Handlers[i]
		h.Start, h.End, h.Handler = pc(h.Start), pc(h.End), pc(h.Handler)
	}
	for _, a := range c.Attrs.All() {
		switch t := a.(type) {
		case *LineNumberTable:
			for i := range t.Entries {
				t.Entries[i].StartPC = pc(t.Entries[i].StartPC)
			}
		case *LocalVariableTable:
			for i := range t.Entries {
				v := &t.Entries[i]
				start := pc(v.StartPC)
				end := uint16(asm.PC(int(v.StartPC) + int(v.Length)))
				v.StartPC, v.Length = start, end-start
			}
		}
	}
	// Frames describe the old layout and cannot be remapped.
	c.Attrs.Remove(AttrStackMapTable)
	return nil
}

func laidOut(insts []*bytecode.Inst) bool {
	for _, in := range insts {
		if in.Offset >= 0 {
			return true
		}
	}
	return false
}

func (c *Code) encode(st SymbolTable) ([]byte, error) {
	if err := c.relayout(); err != nil {
		return nil, err
	}
	w := byteio.NewWriter()
	w.U16(c.MaxStack)
	w.U16(c.MaxLocals)
	w.U32(uint32(len(c.raw)))
	w.Write(c.raw)
	w.U16(uint16(len(c.Handlers)))
	for _, h := range c.Handlers {
		w.U16(h.Start)
		w.U16(h.End)
		w.U16(h.Handler)
		w.U16(h.CatchType)
	}
	if err := c.Attrs.write(w, st); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (d *decoder) code(r *byteio.Reader, base int) (*Code, error) {
	c := &Code{}
	var err error
	if c.MaxStack, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if c.MaxLocals, err = r.ReadU16(); err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > 0xffff {
		return nil, fmt.Errorf("%w: code length %d", bytecode.ErrCodeTooLarge, n)
	}
	if c.raw, err = r.ReadBytes(int(n)); err != nil {
		return nil, err
	}
	insts, err := bytecode.Decode(c.raw)
	if err != nil {
		return nil, err
	}
	c.insts = bytecode.NewInstructions(insts)

	nh, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	c.Handlers = make([]bytecode.Handler, nh)
	for i := range c.Handlers {
		h := &c.Handlers[i]
		for _, f := range []*uint16{&h.Start, &h.End, &h.Handler, &h.CatchType} {
			if *f, err = r.ReadU16(); err != nil {
				return nil, err
			}
		}
	}
	if c.Attrs, err = d.attributes(r, base); err != nil {
		return nil, err
	}
	return c, nil
}
