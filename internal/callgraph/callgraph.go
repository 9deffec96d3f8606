// Package callgraph maps instruction graphs and invoke sites onto lattice
// graphs for rendering.
package callgraph

import (
	"strings"

	"github.com/zboralski/lattice"

	"jdeob/internal/bytecode"
)

// MethodInfo holds the data needed to build the call graph and CFG for one
// method.
type MethodInfo struct {
	Name  string
	Graph *bytecode.Graph // nil for methods without code
	Calls []CallEdge
}

// CallEdge is one invoke instruction and the member it resolves to.
type CallEdge struct {
	Index  int // node index in the method's graph
	Op     bytecode.Op
	Callee string
}

// BuildCallGraph constructs a lattice.Graph from collected methods.
// Each method becomes a node and each invoke site an edge. When keep is
// non-nil, callees it rejects are skipped.
func BuildCallGraph(methods []MethodInfo, keep func(callee string) bool) *lattice.Graph {
	g := &lattice.Graph{}
	for _, m := range methods {
		g.Nodes = append(g.Nodes, m.Name)
		for _, e := range m.Calls {
			if e.Callee == "" || (keep != nil && !keep(e.Callee)) {
				continue
			}
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: m.Name,
				Callee: e.Callee,
			})
		}
	}
	g.Dedup()
	return g
}

// IsApplication reports whether callee lies outside the platform packages
// (java/, javax/, jdk/, sun/).
func IsApplication(callee string) bool {
	for _, p := range []string{"java/", "javax/", "jdk/", "sun/"} {
		if strings.HasPrefix(callee, p) {
			return false
		}
	}
	return true
}
