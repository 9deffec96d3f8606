package classfile

import (
	"errors"

	"jdeob/internal/byteio"
)

// Methods is the ordered method list of a class. It owns its methods and
// shares the class's symbol table with them.
type Methods struct {
	st   SymbolTable
	list []*Method
}

// NewMethods returns an empty method list resolving against st.
func NewMethods(st SymbolTable) *Methods {
	return &Methods{st: st}
}

// SymbolTable returns the table names and descriptors are interned in.
func (ms *Methods) SymbolTable() SymbolTable { return ms.st }

// List returns the methods in class file order. The slice must not be
// modified; use Add and Remove.
func (ms *Methods) List() []*Method { return ms.list }

func (ms *Methods) Len() int { return len(ms.list) }

// Add appends m, taking it from its previous container if it had one.
func (ms *Methods) Add(m *Method) {
	if m.owner == ms && ms.Contains(m) {
		return
	}
	if prev := m.owner; prev != nil {
		prev.Remove(m)
		if prev.st != ms.st {
			// Indices point into the previous container's table.
			m.nameIndex, m.descIndex = 0, 0
		}
	}
	m.owner = ms
	ms.list = append(ms.list, m)
}

// Remove detaches m and reports whether it was a member.
func (ms *Methods) Remove(m *Method) bool {
	for i, x := range ms.list {
		if x == m {
			ms.list = append(ms.list[:i], ms.list[i+1:]...)
			m.owner = nil
			return true
		}
	}
	return false
}

// Contains reports whether m is a member.
func (ms *Methods) Contains(m *Method) bool {
	for _, x := range ms.list {
		if x == m {
			return true
		}
	}
	return false
}

// Find returns the method with the given name and descriptor text, or nil.
// An empty desc matches any descriptor.
func (ms *Methods) Find(name, desc string) *Method {
	for _, m := range ms.list {
		if m.name == name && (desc == "" || m.desc.String() == desc) {
			return m
		}
	}
	return nil
}

// BuildInstructionGraphs builds the graph of every method. A failing method
// does not stop the others; all failures are joined.
func (ms *Methods) BuildInstructionGraphs() error {
	var errs []error
	for _, m := range ms.list {
		if err := m.BuildInstructionGraph(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms *Methods) write(w *byteio.Writer) error {
	w.U16(uint16(len(ms.list)))
	for _, m := range ms.list {
		if err := m.Write(w); err != nil {
			return err
		}
	}
	return nil
}
