// Package pool implements the class file constant pool: an index-stable
// table of interned UTF-8 strings and symbolic references.
package pool

import (
	"errors"
	"fmt"
)

var (
	ErrBadIndex = errors.New("pool: index out of range")
	ErrBadTag   = errors.New("pool: unknown constant tag")
	ErrWrongTag = errors.New("pool: entry has unexpected tag")
)

// Tag is a constant pool entry tag.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Entry is one constant pool slot. The second slot of a long or double is
// represented by a nil Entry.
type Entry interface {
	Tag() Tag
}

// Utf8 holds the entry bytes exactly as stored (modified UTF-8). For text
// without NUL or supplementary characters this is ordinary UTF-8.
type Utf8 struct{ Value string }

type Integer struct{ Value int32 }

type Float struct{ Bits uint32 }

type Long struct{ Value int64 }

type Double struct{ Bits uint64 }

// Class and the other single-index entries name their referenced slot.
type Class struct{ NameIndex uint16 }

type String struct{ Utf8Index uint16 }

type MethodType struct{ DescriptorIndex uint16 }

type Module struct{ NameIndex uint16 }

type Package struct{ NameIndex uint16 }

// Ref is a Fieldref, Methodref or InterfaceMethodref.
type Ref struct {
	Kind             Tag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type NameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

type MethodHandle struct {
	Kind     uint8
	RefIndex uint16
}

// Dynamic is a Dynamic or InvokeDynamic entry.
type Dynamic struct {
	Kind             Tag
	BootstrapIndex   uint16
	NameAndTypeIndex uint16
}

func (Utf8) Tag() Tag         { return TagUtf8 }
func (Integer) Tag() Tag      { return TagInteger }
func (Float) Tag() Tag        { return TagFloat }
func (Long) Tag() Tag         { return TagLong }
func (Double) Tag() Tag       { return TagDouble }
func (Class) Tag() Tag        { return TagClass }
func (String) Tag() Tag       { return TagString }
func (MethodType) Tag() Tag   { return TagMethodType }
func (Module) Tag() Tag       { return TagModule }
func (Package) Tag() Tag      { return TagPackage }
func (r Ref) Tag() Tag        { return r.Kind }
func (NameAndType) Tag() Tag  { return TagNameAndType }
func (MethodHandle) Tag() Tag { return TagMethodHandle }
func (d Dynamic) Tag() Tag    { return d.Kind }

// Pool is a constant pool. Index 0 is unused, as in the class file.
//
// Existing indices never move: MakeUTF8 and the other constructors only
// append, so a read-modify-write cycle reproduces unmodified entries.
type Pool struct {
	entries []Entry
	utf8    map[string]uint16
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{entries: []Entry{nil}, utf8: make(map[string]uint16)}
}

// Len returns the constant_pool_count value (entries plus one).
func (p *Pool) Len() int { return len(p.entries) }

// Entry returns the entry at index i.
func (p *Pool) Entry(i uint16) (Entry, error) {
	if i == 0 || int(i) >= len(p.entries) || p.entries[i] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadIndex, i)
	}
	return p.entries[i], nil
}

// UTF8 resolves a Utf8 entry.
func (p *Pool) UTF8(i uint16) (string, error) {
	e, err := p.Entry(i)
	if err != nil {
		return "", err
	}
	u, ok := e.(Utf8)
	if !ok {
		return "", fmt.Errorf("%w: #%d is tag %d, want Utf8", ErrWrongTag, i, e.Tag())
	}
	return u.Value, nil
}

// MakeUTF8 returns the index of s, appending a new Utf8 entry if absent.
// When s appears more than once the first index wins.
func (p *Pool) MakeUTF8(s string) uint16 {
	if i, ok := p.utf8[s]; ok {
		return i
	}
	i := p.add(Utf8{Value: s})
	p.utf8[s] = i
	return i
}

// MakeClass returns the index of a Class entry naming the internal name s.
func (p *Pool) MakeClass(s string) uint16 {
	name := p.MakeUTF8(s)
	for i, e := range p.entries {
		if c, ok := e.(Class); ok && c.NameIndex == name {
			return uint16(i)
		}
	}
	return p.add(Class{NameIndex: name})
}

// MakeNameAndType returns the index of a NameAndType entry.
func (p *Pool) MakeNameAndType(name, desc string) uint16 {
	n, d := p.MakeUTF8(name), p.MakeUTF8(desc)
	for i, e := range p.entries {
		if nt, ok := e.(NameAndType); ok && nt.NameIndex == n && nt.DescriptorIndex == d {
			return uint16(i)
		}
	}
	return p.add(NameAndType{NameIndex: n, DescriptorIndex: d})
}

// MakeRef returns the index of a field or method reference.
func (p *Pool) MakeRef(kind Tag, owner, name, desc string) uint16 {
	c, nt := p.MakeClass(owner), p.MakeNameAndType(name, desc)
	for i, e := range p.entries {
		if r, ok := e.(Ref); ok && r.Kind == kind && r.ClassIndex == c && r.NameAndTypeIndex == nt {
			return uint16(i)
		}
	}
	return p.add(Ref{Kind: kind, ClassIndex: c, NameAndTypeIndex: nt})
}

func (p *Pool) add(e Entry) uint16 {
	i := uint16(len(p.entries))
	p.entries = append(p.entries, e)
	if t := e.Tag(); t == TagLong || t == TagDouble {
		p.entries = append(p.entries, nil)
	}
	return i
}

// ClassName resolves a Class entry to its internal name.
func (p *Pool) ClassName(i uint16) (string, error) {
	e, err := p.Entry(i)
	if err != nil {
		return "", err
	}
	c, ok := e.(Class)
	if !ok {
		return "", fmt.Errorf("%w: #%d is tag %d, want Class", ErrWrongTag, i, e.Tag())
	}
	return p.UTF8(c.NameIndex)
}

// NameAndType resolves a NameAndType entry.
func (p *Pool) NameAndType(i uint16) (name, desc string, err error) {
	e, err := p.Entry(i)
	if err != nil {
		return "", "", err
	}
	nt, ok := e.(NameAndType)
	if !ok {
		return "", "", fmt.Errorf("%w: #%d is tag %d, want NameAndType", ErrWrongTag, i, e.Tag())
	}
	if name, err = p.UTF8(nt.NameIndex); err != nil {
		return "", "", err
	}
	if desc, err = p.UTF8(nt.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// Member is a resolved field or method reference.
type Member struct {
	Kind       Tag
	Owner      string
	Name       string
	Descriptor string
}

func (m Member) String() string {
	return m.Owner + "." + m.Name + m.Descriptor
}

// Member resolves a Fieldref, Methodref or InterfaceMethodref.
func (p *Pool) Member(i uint16) (Member, error) {
	e, err := p.Entry(i)
	if err != nil {
		return Member{}, err
	}
	r, ok := e.(Ref)
	if !ok {
		return Member{}, fmt.Errorf("%w: #%d is tag %d, want member ref", ErrWrongTag, i, e.Tag())
	}
	owner, err := p.ClassName(r.ClassIndex)
	if err != nil {
		return Member{}, err
	}
	name, desc, err := p.NameAndType(r.NameAndTypeIndex)
	if err != nil {
		return Member{}, err
	}
	return Member{Kind: r.Kind, Owner: owner, Name: name, Descriptor: desc}, nil
}

// Describe renders entry i for listings. Unresolvable entries render as #i.
func (p *Pool) Describe(i uint16) string {
	e, err := p.Entry(i)
	if err != nil {
		return fmt.Sprintf("#%d", i)
	}
	switch v := e.(type) {
	case Utf8:
		return fmt.Sprintf("%q", v.Value)
	case Integer:
		return fmt.Sprintf("%d", v.Value)
	case Long:
		return fmt.Sprintf("%dL", v.Value)
	case Float:
		return fmt.Sprintf("float 0x%08x", v.Bits)
	case Double:
		return fmt.Sprintf("double 0x%016x", v.Bits)
	case Class:
		if s, err := p.UTF8(v.NameIndex); err == nil {
			return s
		}
	case String:
		if s, err := p.UTF8(v.Utf8Index); err == nil {
			return fmt.Sprintf("%q", s)
		}
	case Ref:
		if m, err := p.Member(i); err == nil {
			return m.String()
		}
	case NameAndType:
		if n, d, err := p.NameAndType(i); err == nil {
			return n + ":" + d
		}
	case MethodType:
		if s, err := p.UTF8(v.DescriptorIndex); err == nil {
			return s
		}
	case Dynamic:
		if n, d, err := p.NameAndType(v.NameAndTypeIndex); err == nil {
			return fmt.Sprintf("bsm#%d:%s%s", v.BootstrapIndex, n, d)
		}
	}
	return fmt.Sprintf("#%d", i)
}
