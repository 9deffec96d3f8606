package classfile

import (
	"fmt"

	"jdeob/internal/byteio"
	"jdeob/internal/bytecode"
	"jdeob/internal/descriptor"
)

// Method access flags.
const (
	AccPublic       uint16 = 0x0001
	AccPrivate      uint16 = 0x0002
	AccProtected    uint16 = 0x0004
	AccStatic       uint16 = 0x0008
	AccFinal        uint16 = 0x0010
	AccSynchronized uint16 = 0x0020
	AccBridge       uint16 = 0x0040
	AccVarargs      uint16 = 0x0080
	AccNative       uint16 = 0x0100
	AccAbstract     uint16 = 0x0400
	AccStrict       uint16 = 0x0800
	AccSynthetic    uint16 = 0x1000
)

// NameAndType is a method's identity within its class.
type NameAndType struct {
	Name       string
	Descriptor descriptor.Method
}

func (nt NameAndType) String() string { return nt.Name + nt.Descriptor.String() }

// Method is one method_info entry.
//
// A decoded method remembers the pool indices of its name and descriptor
// and writes them back unchanged until SetName or SetDescriptor is called;
// after that the new text is interned on write.
type Method struct {
	owner     *Methods
	access    uint16
	name      string
	desc      descriptor.Method
	nameIndex uint16
	descIndex uint16
	attrs     Attributes
}

// NewMethod creates a synthetic method with an empty attribute set. It
// belongs to no container until added to one.
func NewMethod(name string, desc descriptor.Method) *Method {
	return &Method{name: name, desc: desc}
}

// Methods returns the owning container, or nil.
func (m *Method) Methods() *Methods { return m.owner }

func (m *Method) AccessFlags() uint16     { return m.access }
func (m *Method) SetAccessFlags(f uint16) { m.access = f }

func (m *Method) IsStatic() bool       { return m.access&AccStatic != 0 }
func (m *Method) IsSynchronized() bool { return m.access&AccSynchronized != 0 }
func (m *Method) IsAbstract() bool     { return m.access&AccAbstract != 0 }
func (m *Method) IsNative() bool       { return m.access&AccNative != 0 }

func (m *Method) Name() string { return m.name }

// SetName renames the method.
func (m *Method) SetName(name string) {
	if name != m.name {
		m.name, m.nameIndex = name, 0
	}
}

func (m *Method) Descriptor() descriptor.Method { return m.desc }

// SetDescriptor retypes the method.
func (m *Method) SetDescriptor(d descriptor.Method) {
	if !d.Equal(m.desc) {
		m.desc, m.descIndex = d, 0
	}
}

func (m *Method) NameAndType() NameAndType {
	return NameAndType{Name: m.name, Descriptor: m.desc}
}

func (m *Method) String() string { return m.name + m.desc.String() }

// Attributes returns the method's attribute set.
func (m *Method) Attributes() *Attributes { return &m.attrs }

// Code returns the Code attribute, or nil for abstract and native methods
// and for code kept raw by a best-effort parse.
func (m *Method) Code() *Code {
	c, _ := m.attrs.Find(AttrCode).(*Code)
	return c
}

// Exceptions returns the Exceptions attribute, or nil.
func (m *Method) Exceptions() *Exceptions {
	e, _ := m.attrs.Find(AttrExceptions).(*Exceptions)
	return e
}

// BuildInstructionGraph builds the instruction graph of the method's code,
// replacing any previous graph. It does nothing for a method without code.
// Failures are reported as *MethodError.
func (m *Method) BuildInstructionGraph() error {
	c := m.Code()
	if c == nil {
		return nil
	}
	if err := c.BuildInstructionGraph(); err != nil {
		return m.errorf(err)
	}
	return nil
}

// FindLocalVariableReferences returns, in sequence order, the instructions
// that read or write local variable slot. It does not depend on the graph.
// The result is empty, never nil, when the method has no code.
func (m *Method) FindLocalVariableReferences(slot int) []*bytecode.Inst {
	c := m.Code()
	if c == nil {
		return []*bytecode.Inst{}
	}
	return bytecode.FilterLocal(c.insts.List(), slot)
}

// RenumberLocal moves every access to local slot from onto slot to and
// re-keys the local variable tables. It returns the number of instructions
// rewritten. Instructions may change size, so the graph is dropped.
func (m *Method) RenumberLocal(from, to int) (int, error) {
	c := m.Code()
	if c == nil {
		return 0, nil
	}
	if to < 0 || to > 0xffff {
		return 0, m.errorf(fmt.Errorf("slot %d out of range", to))
	}
	refs := bytecode.FilterLocal(c.insts.List(), from)
	if from == to {
		return len(refs), nil
	}
	c.insts.Touch()
	for _, in := range refs {
		if err := in.SetSlot(to); err != nil {
			return 0, &MethodError{Name: m.name, Descriptor: m.desc.String(), Offset: in.Offset, Err: err}
		}
		if need := to + in.LocalWidth(); need > int(c.MaxLocals) {
			c.MaxLocals = uint16(need)
		}
	}
	for _, a := range c.Attrs.All() {
		if t, ok := a.(*LocalVariableTable); ok {
			for i := range t.Entries {
				if int(t.Entries[i].Index) == from {
					t.Entries[i].Index = uint16(to)
				}
			}
		}
	}
	return len(refs), nil
}

// Write encodes the method. The method must be a member of its container;
// writing a detached method is a programming error and panics.
func (m *Method) Write(w *byteio.Writer) error {
	if m.owner == nil || !m.owner.Contains(m) {
		panic(fmt.Sprintf("classfile: write of method %s that is not in its container", m))
	}
	st := m.owner.st
	ni, di := m.nameIndex, m.descIndex
	if ni == 0 {
		ni = st.MakeUTF8(m.name)
	}
	if di == 0 {
		di = st.MakeUTF8(m.desc.String())
	}
	w.U16(m.access)
	w.U16(ni)
	w.U16(di)
	if err := m.attrs.write(w, st); err != nil {
		return m.errorf(err)
	}
	return nil
}

func (m *Method) errorf(err error) error {
	return &MethodError{Name: m.name, Descriptor: m.desc.String(), Offset: errOffset(err), Err: err}
}

func (d *decoder) method(r *byteio.Reader) (*Method, error) {
	m := &Method{}
	var err error
	if m.access, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if m.nameIndex, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if m.descIndex, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if m.name, err = d.st.UTF8(m.nameIndex); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	desc, err := d.st.UTF8(m.descIndex)
	if err != nil {
		return nil, &MethodError{Name: m.name, Offset: -1, Err: fmt.Errorf("descriptor: %w", err)}
	}
	if m.desc, err = descriptor.ParseMethod(desc); err != nil {
		return nil, &MethodError{Name: m.name, Descriptor: desc, Offset: -1, Err: err}
	}
	d.cur = m.String()
	defer func() { d.cur = "" }()
	if m.attrs, err = d.attributes(r, 0); err != nil {
		return nil, m.errorf(err)
	}
	return m, nil
}
