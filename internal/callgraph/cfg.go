package callgraph

import (
	"fmt"

	"github.com/zboralski/lattice"

	"jdeob/internal/bytecode"
)

// BuildCFG constructs a lattice.CFGGraph from collected methods. Methods
// without code are skipped.
func BuildCFG(methods []MethodInfo) *lattice.CFGGraph {
	cg := &lattice.CFGGraph{}
	for _, m := range methods {
		if m.Graph == nil {
			continue
		}
		lcfg, _ := BuildFuncCFG(m)
		cg.Funcs = append(cg.Funcs, lcfg)
	}
	return cg
}

// BuildFuncCFG maps one method's instruction graph to a lattice.FuncCFG.
// Every instruction becomes its own block, so the result mirrors the
// instruction-level graph exactly. Returns the FuncCFG and its block count.
func BuildFuncCFG(m MethodInfo) (*lattice.FuncCFG, int) {
	lcfg := &lattice.FuncCFG{Name: m.Name}
	if m.Graph == nil {
		return lcfg, 0
	}
	callAt := make(map[int][]CallEdge, len(m.Calls))
	for _, e := range m.Calls {
		callAt[e.Index] = append(callAt[e.Index], e)
	}

	g := m.Graph
	for i := 0; i < g.Len(); i++ {
		in := g.Node(i)
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: i,
			End:   i + 1,
			Term:  g.Terminal(i),
		}
		for _, e := range g.Succs(i) {
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: e.To,
				Cond:    edgeCond(in, e),
			})
		}
		for _, c := range callAt[i] {
			lb.Calls = append(lb.Calls, lattice.CallSite{
				Offset: in.Offset,
				Callee: c.Callee,
			})
		}
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg, len(lcfg.Blocks)
}

// edgeCond labels an edge the way the renderer colors it: T/F for the two
// sides of a conditional branch, the key for switch cases, E for handlers.
func edgeCond(in *bytecode.Inst, e bytecode.Edge) string {
	switch e.Kind {
	case bytecode.EdgeBranch:
		if in.Caps().Has(bytecode.CapCondBranch) {
			return "T"
		}
	case bytecode.EdgeFall:
		if in.Caps().Has(bytecode.CapCondBranch) {
			return "F"
		}
	case bytecode.EdgeCase:
		if sw, ok := in.Operand.(*bytecode.Switch); ok && e.Case < len(sw.Keys) {
			return fmt.Sprintf("case %d", sw.Keys[e.Case])
		}
		return "case"
	case bytecode.EdgeDefault:
		return "default"
	case bytecode.EdgeException:
		return "E"
	}
	return ""
}
