// Package classfile models the methods of a JVM class file, their Code
// attributes and the attributes around them, and writes the model back.
//
// Only what the method model needs is interpreted. Fields and class level
// attributes are kept opaque, and every decoded structure remembers its
// constant pool indices, so a class that is parsed and written without
// changes comes back byte for byte.
package classfile

import (
	"fmt"

	"jdeob/internal/byteio"
	"jdeob/internal/pool"
)

// Magic is the class file signature.
const Magic = 0xCAFEBABE

// Field is a field_info entry. Fields are carried through unchanged.
type Field struct {
	Access          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attrs           Attributes
}

// ClassFile is a parsed class file.
type ClassFile struct {
	Minor, Major uint16
	Pool         *pool.Pool
	Access       uint16
	This, Super  uint16
	Interfaces   []uint16
	Fields       []*Field
	Methods      *Methods
	Attrs        Attributes

	// Diags collects what a best-effort parse recovered from.
	Diags Diags
}

// New returns an empty class with the given internal names, for building
// classes in code.
func New(name, super string) *ClassFile {
	p := pool.New()
	cf := &ClassFile{Major: 52, Pool: p, Access: 0x0021}
	cf.This = p.MakeClass(name)
	if super != "" {
		cf.Super = p.MakeClass(super)
	}
	cf.Methods = NewMethods(p)
	return cf
}

// Name returns the internal name of the class.
func (cf *ClassFile) Name() string {
	s, err := cf.Pool.ClassName(cf.This)
	if err != nil {
		return fmt.Sprintf("#%d", cf.This)
	}
	return s
}

// Parse decodes a class file.
//
// In ModeStrict the first malformed method fails the parse with a
// *MethodError. In ModeBestEffort an attribute that does not decode is
// kept as raw bytes and reported in Diags, so one bad method leaves its
// siblings intact.
func Parse(data []byte, opts Options) (*ClassFile, error) {
	r := byteio.NewReader(data)
	magic, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("classfile: header: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	cf := &ClassFile{}
	if cf.Minor, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("classfile: header: %w", err)
	}
	if cf.Major, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("classfile: header: %w", err)
	}
	if cf.Pool, err = pool.Read(r); err != nil {
		return nil, fmt.Errorf("classfile: %w", err)
	}
	d := &decoder{st: cf.Pool, opts: opts, diags: &cf.Diags}

	var hdr [3]uint16
	for i := range hdr {
		if hdr[i], err = r.ReadU16(); err != nil {
			return nil, fmt.Errorf("classfile: class header: %w", err)
		}
	}
	cf.Access, cf.This, cf.Super = hdr[0], hdr[1], hdr[2]

	n, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("classfile: interfaces: %w", err)
	}
	cf.Interfaces = make([]uint16, n)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = r.ReadU16(); err != nil {
			return nil, fmt.Errorf("classfile: interfaces: %w", err)
		}
	}

	if n, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("classfile: fields: %w", err)
	}
	for i := 0; i < int(n); i++ {
		f, err := d.field(r)
		if err != nil {
			return nil, fmt.Errorf("classfile: field %d: %w", i, err)
		}
		cf.Fields = append(cf.Fields, f)
	}

	cf.Methods = NewMethods(cf.Pool)
	if n, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("classfile: methods: %w", err)
	}
	for i := 0; i < int(n); i++ {
		m, err := d.method(r)
		if err != nil {
			return nil, fmt.Errorf("classfile: method %d: %w", i, err)
		}
		cf.Methods.Add(m)
	}

	if cf.Attrs, err = d.attributes(r, 0); err != nil {
		return nil, fmt.Errorf("classfile: class attributes: %w", err)
	}
	if rem := r.Remaining(); rem != 0 {
		if opts.Mode == ModeStrict {
			return nil, fmt.Errorf("%w: %d bytes", ErrTrailing, rem)
		}
		cf.Diags.Addf(r.Position(), DiagTrailing, "", "%d trailing bytes dropped", rem)
	}
	return cf, nil
}

func (d *decoder) field(r *byteio.Reader) (*Field, error) {
	f := &Field{}
	var err error
	for _, p := range []*uint16{&f.Access, &f.NameIndex, &f.DescriptorIndex} {
		if *p, err = r.ReadU16(); err != nil {
			return nil, err
		}
	}
	if f.Attrs, err = d.attributes(r, 0); err != nil {
		return nil, err
	}
	return f, nil
}

// Bytes encodes the class file. The body is encoded before the pool so
// that names interned while writing it are part of the emitted pool.
func (cf *ClassFile) Bytes() ([]byte, error) {
	body := byteio.NewWriter()
	body.U16(cf.Access)
	body.U16(cf.This)
	body.U16(cf.Super)
	body.U16(uint16(len(cf.Interfaces)))
	for _, i := range cf.Interfaces {
		body.U16(i)
	}
	body.U16(uint16(len(cf.Fields)))
	for i, f := range cf.Fields {
		body.U16(f.Access)
		body.U16(f.NameIndex)
		body.U16(f.DescriptorIndex)
		if err := f.Attrs.write(body, cf.Pool); err != nil {
			return nil, fmt.Errorf("classfile: field %d: %w", i, err)
		}
	}
	if err := cf.Methods.write(body); err != nil {
		return nil, fmt.Errorf("classfile: %w", err)
	}
	if err := cf.Attrs.write(body, cf.Pool); err != nil {
		return nil, fmt.Errorf("classfile: class attributes: %w", err)
	}

	w := byteio.NewWriter()
	w.U32(Magic)
	w.U16(cf.Minor)
	w.U16(cf.Major)
	cf.Pool.Write(w)
	w.Write(body.Bytes())
	return w.Bytes(), nil
}
