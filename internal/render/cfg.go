package render

import (
	"fmt"
	"strings"

	"jdeob/internal/bytecode"
)

// maxInsnLabel caps node labels; pool annotations can be long.
const maxInsnLabel = 72

// InsnDOT renders an instruction-level graph as DOT. Each instruction is a
// node labeled with its offset and text. Edge color follows the edge kind;
// handler edges are dashed. Unreachable instructions are grayed out.
func InsnDOT(name string, g *bytecode.Graph, lookup bytecode.PoolLookup, t Theme) string {
	if g == nil || g.Len() == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotID(name))
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  nodesep=0.25;\n")
	b.WriteString("  ranksep=0.3;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Courier,monospace\", fontsize=8, fontcolor=%q, margin=\"0.08,0.04\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	b.WriteString("  edge [penwidth=0.7, arrowsize=0.5, arrowhead=vee];\n")
	b.WriteString("  labelloc=t;\n  labeljust=l;\n")
	fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"9\" color=\"%s\">%s</font>>;\n",
		t.TextColor, dotEscape(name))
	b.WriteByte('\n')

	live := g.Reachable()
	for i := 0; i < g.Len(); i++ {
		in := g.Node(i)
		text := strings.TrimSpace(bytecode.Format([]*bytecode.Inst{in}, lookup))
		label := dotEscape(truncLabel(text, maxInsnLabel))

		var attrs []string
		if i == 0 {
			attrs = append(attrs, "penwidth=1.5", fmt.Sprintf("color=%q", t.EntryBorder))
		}
		if g.Terminal(i) {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", t.TermFill))
		}
		if !live[i] {
			attrs = append(attrs, fmt.Sprintf("fontcolor=%q", t.DeadText), "style=\"filled,dotted\"")
		}
		extra := ""
		if len(attrs) > 0 {
			extra = ", " + strings.Join(attrs, ", ")
		}
		fmt.Fprintf(&b, "  i%d [label=<%s>%s];\n", i, label, extra)
	}
	b.WriteByte('\n')

	for i := 0; i < g.Len(); i++ {
		in := g.Node(i)
		for _, e := range g.Succs(i) {
			fmt.Fprintf(&b, "  i%d -> i%d [%s];\n", e.From, e.To, edgeAttrs(in, e, t))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func edgeAttrs(in *bytecode.Inst, e bytecode.Edge, t Theme) string {
	small := func(color, text string) string {
		return fmt.Sprintf("color=%q, label=<<font point-size=\"7\" color=\"%s\">%s</font>>", color, color, dotEscape(text))
	}
	cond := in.Caps().Has(bytecode.CapCondBranch)
	switch e.Kind {
	case bytecode.EdgeBranch:
		if cond {
			return small(t.EdgeTaken, "T")
		}
		return fmt.Sprintf("color=%q", t.EdgeJump)
	case bytecode.EdgeFall:
		if cond {
			return small(t.EdgeNotTaken, "F")
		}
		return fmt.Sprintf("color=%q", t.EdgeFall)
	case bytecode.EdgeCase:
		if sw, ok := in.Operand.(*bytecode.Switch); ok && e.Case < len(sw.Keys) {
			return small(t.EdgeSwitch, fmt.Sprint(sw.Keys[e.Case]))
		}
		return fmt.Sprintf("color=%q", t.EdgeSwitch)
	case bytecode.EdgeDefault:
		return small(t.EdgeSwitch, "default")
	case bytecode.EdgeException:
		return small(t.EdgeException, fmt.Sprintf("h%d", e.Case)) + ", style=dashed"
	}
	return fmt.Sprintf("color=%q", t.EdgeFall)
}
