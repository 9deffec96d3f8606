package classfile

import (
	"fmt"

	"jdeob/internal/byteio"
)

// AttrType is an attribute name as it appears in the class file.
type AttrType string

const (
	AttrCode                   AttrType = "Code"
	AttrExceptions             AttrType = "Exceptions"
	AttrLineNumberTable        AttrType = "LineNumberTable"
	AttrLocalVariableTable     AttrType = "LocalVariableTable"
	AttrLocalVariableTypeTable AttrType = "LocalVariableTypeTable"
	AttrStackMapTable          AttrType = "StackMapTable"
)

// SymbolTable is the part of the constant pool the model needs. Indices
// handed out by the Make methods stay valid for the life of the table.
type SymbolTable interface {
	UTF8(i uint16) (string, error)
	MakeUTF8(s string) uint16
	ClassName(i uint16) (string, error)
	MakeClass(name string) uint16
}

// Attribute is a typed attribute. Types the model does not interpret are
// kept as *Unknown.
type Attribute interface {
	Type() AttrType
	encode(st SymbolTable) ([]byte, error)
}

// Unknown is an attribute kept as raw bytes.
type Unknown struct {
	Name string
	Data []byte
}

func (u *Unknown) Type() AttrType                     { return AttrType(u.Name) }
func (u *Unknown) encode(SymbolTable) ([]byte, error) { return u.Data, nil }

type attrItem struct {
	nameIndex uint16 // 0 until interned on write
	attr      Attribute
}

// Attributes is an ordered attribute set. Decoded attributes keep their
// name index so an unmodified set writes back byte for byte.
type Attributes struct {
	items []attrItem
}

// Len returns the number of attributes.
func (as *Attributes) Len() int { return len(as.items) }

// Find returns the first attribute of type t, or nil.
func (as *Attributes) Find(t AttrType) Attribute {
	for _, it := range as.items {
		if it.attr.Type() == t {
			return it.attr
		}
	}
	return nil
}

// All returns the attributes in order.
func (as *Attributes) All() []Attribute {
	out := make([]Attribute, len(as.items))
	for i, it := range as.items {
		out[i] = it.attr
	}
	return out
}

// Add appends a.
func (as *Attributes) Add(a Attribute) {
	as.items = append(as.items, attrItem{attr: a})
}

// Remove deletes the first attribute of type t and reports whether one
// was found.
func (as *Attributes) Remove(t AttrType) bool {
	for i, it := range as.items {
		if it.attr.Type() == t {
			as.items = append(as.items[:i], as.items[i+1:]...)
			return true
		}
	}
	return false
}

func (as *Attributes) write(w *byteio.Writer, st SymbolTable) error {
	w.U16(uint16(len(as.items)))
	for _, it := range as.items {
		idx := it.nameIndex
		if idx == 0 {
			idx = st.MakeUTF8(string(it.attr.Type()))
		}
		body, err := it.attr.encode(st)
		if err != nil {
			return fmt.Errorf("%s: %w", it.attr.Type(), err)
		}
		w.U16(idx)
		w.U32(uint32(len(body)))
		w.Write(body)
	}
	return nil
}

// decoder carries parse state shared by every attribute level.
type decoder struct {
	st     SymbolTable
	opts   Options
	diags  *Diags
	cur    string // name+descriptor of the method being decoded
}

// attributes reads attribute_count and the attributes that follow. base is
// the absolute file position of r's first byte.
func (d *decoder) attributes(r *byteio.Reader, base int) (Attributes, error) {
	var as Attributes
	n, err := r.ReadU16()
	if err != nil {
		return as, fmt.Errorf("attribute count: %w", err)
	}
	for i := 0; i < int(n); i++ {
		pos := base + r.Position()
		idx, err := r.ReadU16()
		if err != nil {
			return as, fmt.Errorf("attribute %d: %w", i, err)
		}
		length, err := r.ReadU32()
		if err != nil {
			return as, fmt.Errorf("attribute %d: %w", i, err)
		}
		body, err := r.ReadBytes(int(length))
		if err != nil {
			return as, fmt.Errorf("attribute %d: %w", i, err)
		}
		name, err := d.st.UTF8(idx)
		if err != nil {
			return as, fmt.Errorf("attribute %d name: %w", i, err)
		}
		a, err := d.attribute(AttrType(name), body, pos+6)
		if err != nil {
			if d.opts.Mode == ModeStrict {
				return as, fmt.Errorf("%s attribute: %w", name, err)
			}
			d.diags.Addf(pos, diagKind(err), d.cur, "%s attribute kept raw: %v", name, err)
			a = &Unknown{Name: name, Data: body}
		}
		as.items = append(as.items, attrItem{nameIndex: idx, attr: a})
	}
	return as, nil
}

func (d *decoder) attribute(t AttrType, body []byte, base int) (Attribute, error) {
	r := byteio.NewReader(body)
	var (
		a   Attribute
		err error
	)
	switch t {
	case AttrCode:
		a, err = d.code(r, base)
	case AttrExceptions:
		a, err = readExceptions(r)
	case AttrLineNumberTable:
		a, err = readLineNumbers(r)
	case AttrLocalVariableTable, AttrLocalVariableTypeTable:
		a, err = readLocalVariables(r, t)
	default:
		return &Unknown{Name: string(t), Data: body}, nil
	}
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrAttrLength, r.Remaining())
	}
	return a, nil
}
