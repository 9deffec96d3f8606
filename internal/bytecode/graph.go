package bytecode

import (
	"errors"
	"fmt"
)

var ErrUnresolvedTarget = errors.New("bytecode: target offset is not an instruction boundary")

// TargetError reports a branch, switch or handler offset that does not
// resolve to an instruction.
type TargetError struct {
	From   int // offset of the referring instruction, or -1 for a handler
	Target int
	What   string
}

func (e *TargetError) Error() string {
	if e.From < 0 {
		return fmt.Sprintf("%s: %v: %d", e.What, ErrUnresolvedTarget, e.Target)
	}
	return fmt.Sprintf("%s at %d: %v: %d", e.What, e.From, ErrUnresolvedTarget, e.Target)
}

func (e *TargetError) Unwrap() error { return ErrUnresolvedTarget }

// Handler is one exception table entry. Offsets are byte offsets into the
// code array; End is exclusive. CatchType 0 catches everything.
type Handler struct {
	Start     uint16
	End       uint16
	Handler   uint16
	CatchType uint16
}

// Covers reports whether off lies in [Start, End).
func (h Handler) Covers(off int) bool {
	return off >= int(h.Start) && off < int(h.End)
}

// EdgeKind classifies a control-flow edge.
type EdgeKind uint8

const (
	EdgeFall      EdgeKind = iota // to the next instruction in sequence
	EdgeBranch                    // taken branch, goto or jsr
	EdgeCase                      // switch case
	EdgeDefault                   // switch default
	EdgeException                 // to an exception handler entry
)

var edgeKindNames = [...]string{"fall", "branch", "case", "default", "exception"}

func (k EdgeKind) String() string {
	if int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("edge(%d)", uint8(k))
}

// Edge is a directed edge between two nodes, addressed by sequence index.
// Case is the switch case position for EdgeCase and the handler table
// position for EdgeException; otherwise it is -1.
type Edge struct {
	From int
	To   int
	Kind EdgeKind
	Case int
}

// Graph is an instruction-level control-flow graph. There is one node per
// instruction; nodes are never merged into blocks.
//
// The graph is a snapshot of the sequence it was built from. Edges are
// indices into that snapshot, so a Graph never keeps instructions alive on
// behalf of anything else and goes stale when the sequence is mutated.
type Graph struct {
	insts []*Inst
	index map[*Inst]int
	succs [][]Edge
	preds [][]Edge
}

// bindTargets binds every unbound branch and switch target through the
// current instruction offsets.
func bindTargets(insts []*Inst) error {
	var byOff map[int]*Inst
	lookup := func(from *Inst, off int) (*Inst, error) {
		if byOff == nil {
			byOff = make(map[int]*Inst, len(insts))
			for _, in := range insts {
				if in.Offset < 0 {
					continue
				}
				if _, dup := byOff[in.Offset]; !dup {
					byOff[in.Offset] = in
				}
			}
		}
		t, ok := byOff[off]
		if !ok || from.Offset < 0 {
			return nil, &TargetError{From: from.Offset, Target: off, What: from.Op.String()}
		}
		return t, nil
	}

	for _, in := range insts {
		switch o := in.Operand.(type) {
		case *Jump:
			if o.Target != nil {
				continue
			}
			t, err := lookup(in, in.Offset+int(o.Delta))
			if err != nil {
				return err
			}
			o.Target = t
		case *Switch:
			if o.DefaultTarget == nil {
				t, err := lookup(in, in.Offset+int(o.Default))
				if err != nil {
					return err
				}
				o.DefaultTarget = t
			}
			if len(o.Targets) < len(o.Deltas) {
				o.Targets = append(o.Targets, make([]*Inst, len(o.Deltas)-len(o.Targets))...)
			}
			for i, d := range o.Deltas {
				if o.Targets[i] != nil {
					continue
				}
				t, err := lookup(in, in.Offset+int(d))
				if err != nil {
					return err
				}
				o.Targets[i] = t
			}
		}
	}
	return nil
}

// BuildGraph builds the control-flow graph of insts.
//
// Edges leaving one node are ordered: explicit targets in operand encoding
// order (branch target; switch default, then cases), then the fall-through,
// then exceptional edges in handler table order. Duplicate switch targets
// yield parallel edges; use SuccessorSet for set semantics.
//
// insts must carry current offsets. Any offset that does not resolve to an
// instruction fails the whole build with a *TargetError.
func BuildGraph(insts []*Inst, handlers []Handler) (*Graph, error) {
	g := &Graph{
		insts: append([]*Inst(nil), insts...),
		index: make(map[*Inst]int, len(insts)),
		succs: make([][]Edge, len(insts)),
		preds: make([][]Edge, len(insts)),
	}
	byOff := make(map[int]int, len(insts))
	for i, in := range insts {
		g.index[in] = i
		if _, dup := byOff[in.Offset]; !dup {
			byOff[in.Offset] = i
		}
	}

	if err := bindTargets(insts); err != nil {
		return nil, err
	}
	node := func(from, t *Inst) (int, error) {
		i, ok := g.index[t]
		if !ok {
			return 0, &TargetError{From: from.Offset, Target: t.Offset, What: from.Op.String()}
		}
		return i, nil
	}

	for i, in := range insts {
		switch o := in.Operand.(type) {
		case *Jump:
			to, err := node(in, o.Target)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, to, EdgeBranch, -1)
		case *Switch:
			to, err := node(in, o.DefaultTarget)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, to, EdgeDefault, -1)
			for c, t := range o.Targets {
				to, err := node(in, t)
				if err != nil {
					return nil, err
				}
				g.addEdge(i, to, EdgeCase, c)
			}
		}
		if in.Caps().Has(CapFallsThrough) && i+1 < len(insts) {
			g.addEdge(i, i+1, EdgeFall, -1)
		}
	}

	for hi, h := range handlers {
		to, ok := byOff[int(h.Handler)]
		if !ok {
			return nil, &TargetError{From: -1, Target: int(h.Handler), What: fmt.Sprintf("handler %d", hi)}
		}
		for i, in := range insts {
			if h.Covers(in.Offset) {
				g.addEdge(i, to, EdgeException, hi)
			}
		}
	}
	return g, nil
}

func (g *Graph) addEdge(from, to int, kind EdgeKind, c int) {
	e := Edge{From: from, To: to, Kind: kind, Case: c}
	g.succs[from] = append(g.succs[from], e)
	g.preds[to] = append(g.preds[to], e)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.insts) }

// Node returns the instruction at sequence index i.
func (g *Graph) Node(i int) *Inst { return g.insts[i] }

// Nodes returns the instructions of the graph in sequence order.
func (g *Graph) Nodes() []*Inst { return append([]*Inst(nil), g.insts...) }

// IndexOf returns the sequence index of in.
func (g *Graph) IndexOf(in *Inst) (int, bool) {
	i, ok := g.index[in]
	return i, ok
}

// Succs returns the outgoing edges of node i in enumeration order.
func (g *Graph) Succs(i int) []Edge { return g.succs[i] }

// Preds returns the incoming edges of node i, ordered by the source node's
// edge enumeration.
func (g *Graph) Preds(i int) []Edge { return g.preds[i] }

// Successors returns the successor instructions of in, parallel edges
// included.
func (g *Graph) Successors(in *Inst) []*Inst {
	i, ok := g.index[in]
	if !ok {
		return nil
	}
	out := make([]*Inst, 0, len(g.succs[i]))
	for _, e := range g.succs[i] {
		out = append(out, g.insts[e.To])
	}
	return out
}

// SuccessorSet returns the distinct successor indices of node i in first
// occurrence order.
func (g *Graph) SuccessorSet(i int) []int {
	seen := make(map[int]bool, len(g.succs[i]))
	var out []int
	for _, e := range g.succs[i] {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	return out
}

// Predecessors returns the predecessor instructions of in.
func (g *Graph) Predecessors(in *Inst) []*Inst {
	i, ok := g.index[in]
	if !ok {
		return nil
	}
	out := make([]*Inst, 0, len(g.preds[i]))
	for _, e := range g.preds[i] {
		out = append(out, g.insts[e.From])
	}
	return out
}

// Terminal reports whether node i has no successors.
func (g *Graph) Terminal(i int) bool { return len(g.succs[i]) == 0 }

// Reachable marks the nodes reachable from the entry instruction.
// Unreachable nodes stay in the graph; this only classifies them.
func (g *Graph) Reachable() []bool {
	seen := make([]bool, len(g.insts))
	if len(g.insts) == 0 {
		return seen
	}
	stack := []int{0}
	seen[0] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.succs[n] {
			if !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return seen
}

// NumEdges returns the total edge count.
func (g *Graph) NumEdges() int {
	n := 0
	for _, s := range g.succs {
		n += len(s)
	}
	return n
}
