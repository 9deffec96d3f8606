package pool

import (
	"fmt"

	"jdeob/internal/byteio"
)

// Read decodes constant_pool_count and the entries that follow it.
func Read(r *byteio.Reader) (*Pool, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("pool: count: %w", err)
	}
	p := New()
	for len(p.entries) < int(count) {
		idx := len(p.entries)
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("pool: entry #%d: %w", idx, err)
		}
		i := p.add(e)
		if u, ok := e.(Utf8); ok {
			if _, dup := p.utf8[u.Value]; !dup {
				p.utf8[u.Value] = i
			}
		}
	}
	if len(p.entries) != int(count) {
		return nil, fmt.Errorf("pool: wide entry overruns count %d", count)
	}
	return p, nil
}

func readEntry(r *byteio.Reader) (Entry, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagUtf8:
		n, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		return Utf8{Value: string(b)}, nil
	case TagInteger:
		v, err := r.ReadS32()
		return Integer{Value: v}, err
	case TagFloat:
		v, err := r.ReadU32()
		return Float{Bits: v}, err
	case TagLong:
		v, err := r.ReadU64()
		return Long{Value: int64(v)}, err
	case TagDouble:
		v, err := r.ReadU64()
		return Double{Bits: v}, err
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		v, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		switch Tag(tag) {
		case TagClass:
			return Class{NameIndex: v}, nil
		case TagString:
			return String{Utf8Index: v}, nil
		case TagMethodType:
			return MethodType{DescriptorIndex: v}, nil
		case TagModule:
			return Module{NameIndex: v}, nil
		}
		return Package{NameIndex: v}, nil
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
		a, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		b, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		switch Tag(tag) {
		case TagNameAndType:
			return NameAndType{NameIndex: a, DescriptorIndex: b}, nil
		case TagDynamic, TagInvokeDynamic:
			return Dynamic{Kind: Tag(tag), BootstrapIndex: a, NameAndTypeIndex: b}, nil
		}
		return Ref{Kind: Tag(tag), ClassIndex: a, NameAndTypeIndex: b}, nil
	case TagMethodHandle:
		k, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		ref, err := r.ReadU16()
		return MethodHandle{Kind: k, RefIndex: ref}, err
	}
	return nil, fmt.Errorf("%w: %d", ErrBadTag, tag)
}

// Write encodes the pool, count first.
func (p *Pool) Write(w *byteio.Writer) {
	w.U16(uint16(len(p.entries)))
	for _, e := range p.entries[1:] {
		if e == nil {
			continue
		}
		w.U8(uint8(e.Tag()))
		switch v := e.(type) {
		case Utf8:
			w.U16(uint16(len(v.Value)))
			w.Write([]byte(v.Value))
		case Integer:
			w.S32(v.Value)
		case Float:
			w.U32(v.Bits)
		case Long:
			w.U64(uint64(v.Value))
		case Double:
			w.U64(v.Bits)
		case Class:
			w.U16(v.NameIndex)
		case String:
			w.U16(v.Utf8Index)
		case MethodType:
			w.U16(v.DescriptorIndex)
		case Module:
			w.U16(v.NameIndex)
		case Package:
			w.U16(v.NameIndex)
		case Ref:
			w.U16(v.ClassIndex)
			w.U16(v.NameAndTypeIndex)
		case NameAndType:
			w.U16(v.NameIndex)
			w.U16(v.DescriptorIndex)
		case Dynamic:
			w.U16(v.BootstrapIndex)
			w.U16(v.NameAndTypeIndex)
		case MethodHandle:
			w.U8(v.Kind)
			w.U16(v.RefIndex)
		}
	}
}
