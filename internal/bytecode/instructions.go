package bytecode

import (
	"errors"
	"fmt"
)

var (
	ErrNotInSequence = errors.New("bytecode: instruction is not in the sequence")
	ErrStale         = errors.New("bytecode: sequence must be laid out before graph construction")
)

// Instructions is the ordered instruction sequence of one code attribute
// together with its derived graph.
//
// The graph is a cache: any mutation through Insert, Append, Remove or
// Replace marks it stale, and it is only rebuilt on request. Instructions
// is not safe for concurrent use.
type Instructions struct {
	list  []*Inst
	graph *Graph
	stale bool // sequence mutated since the last layout
}

// NewInstructions wraps a decoded sequence.
func NewInstructions(list []*Inst) *Instructions {
	return &Instructions{list: list}
}

// List returns the instructions in sequence order. The slice must not be
// modified; use the mutators instead.
func (s *Instructions) List() []*Inst { return s.list }

// Len returns the number of instructions.
func (s *Instructions) Len() int { return len(s.list) }

// Index returns the position of in, or -1.
func (s *Instructions) Index(in *Inst) int {
	for i, x := range s.list {
		if x == in {
			return i
		}
	}
	return -1
}

// Insert places in at position i.
func (s *Instructions) Insert(i int, in *Inst) error {
	if i < 0 || i > len(s.list) {
		return fmt.Errorf("bytecode: insert position %d out of range [0,%d]", i, len(s.list))
	}
	s.list = append(s.list, nil)
	copy(s.list[i+1:], s.list[i:])
	s.list[i] = in
	s.invalidate()
	return nil
}

// Append adds in at the end of the sequence.
func (s *Instructions) Append(in *Inst) {
	s.list = append(s.list, in)
	s.invalidate()
}

// Remove deletes in from the sequence. Branches that still target it fail
// the next layout with ErrDanglingTarget.
func (s *Instructions) Remove(in *Inst) error {
	i := s.Index(in)
	if i < 0 {
		return ErrNotInSequence
	}
	s.list = append(s.list[:i], s.list[i+1:]...)
	s.invalidate()
	return nil
}

// Replace swaps old for repl and retargets every bound branch and switch
// target that pointed at old.
func (s *Instructions) Replace(old, repl *Inst) error {
	i := s.Index(old)
	if i < 0 {
		return ErrNotInSequence
	}
	s.list[i] = repl
	for _, in := range s.list {
		switch o := in.Operand.(type) {
		case *Jump:
			if o.Target == old {
				o.Target = repl
			}
		case *Switch:
			if o.DefaultTarget == old {
				o.DefaultTarget = repl
			}
			for j, t := range o.Targets {
				if t == old {
					o.Targets[j] = repl
				}
			}
		}
	}
	if repl.Offset < 0 {
		repl.Offset = old.Offset
	}
	s.invalidate()
	return nil
}

// Touch marks the sequence mutated after an in-place edit of an
// instruction, such as SetSlot.
func (s *Instructions) Touch() { s.invalidate() }

func (s *Instructions) invalidate() {
	s.graph = nil
	s.stale = true
}

// Stale reports whether the sequence was mutated since it was last laid
// out. Offsets of a stale sequence are not current.
func (s *Instructions) Stale() bool { return s.stale }

// Graph returns the derived graph, or nil when none is built or the
// sequence changed since.
func (s *Instructions) Graph() *Graph { return s.graph }

// Encode lays out the sequence and emits its code array. After a
// successful Encode the offsets are current again.
func (s *Instructions) Encode() (*Assembled, error) {
	asm, err := Encode(s.list)
	if err != nil {
		return nil, err
	}
	s.stale = false
	return asm, nil
}

// BuildGraph builds and caches the graph. The sequence must not be stale.
func (s *Instructions) BuildGraph(handlers []Handler) (*Graph, error) {
	if s.stale {
		return nil, ErrStale
	}
	g, err := BuildGraph(s.list, handlers)
	if err != nil {
		s.graph = nil
		return nil, err
	}
	s.graph = g
	return g, nil
}

// FilterLocal returns, in sequence order, the instructions that read or
// write local variable slot. The result is never nil.
func FilterLocal(insts []*Inst, slot int) []*Inst {
	out := []*Inst{}
	for _, in := range insts {
		if s, ok := in.Slot(); ok && s == slot {
			out = append(out, in)
		}
	}
	return out
}
