package classfile

import (
	"jdeob/internal/byteio"
)

// Exceptions lists the checked exceptions a method declares.
type Exceptions struct {
	Classes []uint16
}

func (*Exceptions) Type() AttrType { return AttrExceptions }

// Names resolves the declared exception classes.
func (e *Exceptions) Names(st SymbolTable) ([]string, error) {
	out := make([]string, 0, len(e.Classes))
	for _, c := range e.Classes {
		s, err := st.ClassName(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Add declares the exception class name.
func (e *Exceptions) Add(st SymbolTable, name string) {
	e.Classes = append(e.Classes, st.MakeClass(name))
}

func (e *Exceptions) encode(SymbolTable) ([]byte, error) {
	w := byteio.NewWriter()
	w.U16(uint16(len(e.Classes)))
	for _, c := range e.Classes {
		w.U16(c)
	}
	return w.Bytes(), nil
}

func readExceptions(r *byteio.Reader) (*Exceptions, error) {
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	e := &Exceptions{Classes: make([]uint16, n)}
	for i := range e.Classes {
		if e.Classes[i], err = r.ReadU16(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// LineNumber maps a code offset to a source line.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

type LineNumberTable struct {
	Entries []LineNumber
}

func (*LineNumberTable) Type() AttrType { return AttrLineNumberTable }

// Line returns the source line of the code at offset pc, or -1.
func (t *LineNumberTable) Line(pc int) int {
	best, line := -1, -1
	for _, e := range t.Entries {
		if s := int(e.StartPC); s <= pc && s > best {
			best, line = s, int(e.Line)
		}
	}
	return line
}

func (t *LineNumberTable) encode(SymbolTable) ([]byte, error) {
	w := byteio.NewWriter()
	w.U16(uint16(len(t.Entries)))
	for _, e := range t.Entries {
		w.U16(e.StartPC)
		w.U16(e.Line)
	}
	return w.Bytes(), nil
}

func readLineNumbers(r *byteio.Reader) (*LineNumberTable, error) {
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	t := &LineNumberTable{Entries: make([]LineNumber, n)}
	for i := range t.Entries {
		e := &t.Entries[i]
		if e.StartPC, err = r.ReadU16(); err != nil {
			return nil, err
		}
		if e.Line, err = r.ReadU16(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LocalVariable is one local variable table entry. The variable lives in
// slot Index for code offsets [StartPC, StartPC+Length). For a
// LocalVariableTypeTable, DescriptorIndex names a generic signature.
type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

// Covers reports whether the variable is live at pc.
func (v LocalVariable) Covers(pc int) bool {
	return pc >= int(v.StartPC) && pc < int(v.StartPC)+int(v.Length)
}

// LocalVariableTable holds a LocalVariableTable or LocalVariableTypeTable;
// the two share a layout.
type LocalVariableTable struct {
	Typed   bool // LocalVariableTypeTable
	Entries []LocalVariable
}

func (t *LocalVariableTable) Type() AttrType {
	if t.Typed {
		return AttrLocalVariableTypeTable
	}
	return AttrLocalVariableTable
}

// Slot returns the entries describing slot, in table order.
func (t *LocalVariableTable) Slot(slot int) []LocalVariable {
	var out []LocalVariable
	for _, v := range t.Entries {
		if int(v.Index) == slot {
			out = append(out, v)
		}
	}
	return out
}

func (t *LocalVariableTable) encode(SymbolTable) ([]byte, error) {
	w := byteio.NewWriter()
	w.U16(uint16(len(t.Entries)))
	for _, v := range t.Entries {
		w.U16(v.StartPC)
		w.U16(v.Length)
		w.U16(v.NameIndex)
		w.U16(v.DescriptorIndex)
		w.U16(v.Index)
	}
	return w.Bytes(), nil
}

func readLocalVariables(r *byteio.Reader, t AttrType) (*LocalVariableTable, error) {
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	lvt := &LocalVariableTable{Typed: t == AttrLocalVariableTypeTable, Entries: make([]LocalVariable, n)}
	for i := range lvt.Entries {
		v := &lvt.Entries[i]
		for _, f := range []*uint16{&v.StartPC, &v.Length, &v.NameIndex, &v.DescriptorIndex, &v.Index} {
			if *f, err = r.ReadU16(); err != nil {
				return nil, err
			}
		}
	}
	return lvt, nil
}
