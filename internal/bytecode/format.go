package bytecode

import (
	"fmt"
	"strings"
)

// PoolLookup renders a constant pool index for listings.
type PoolLookup func(index uint16) string

// Format renders instructions as stable text, one per line:
//
//	<offset>: <instruction>  ; <comment>
//
// Branches show absolute target offsets. When lookup is non-nil, pool
// operands are annotated with the rendered entry.
func Format(insts []*Inst, lookup PoolLookup) string {
	var b strings.Builder
	for _, in := range insts {
		fmt.Fprintf(&b, "%6d: ", in.Offset)
		switch o := in.Operand.(type) {
		case *Jump:
			fmt.Fprintf(&b, "%s %d", in.Op, targetOffset(in, o.Target, o.Delta))
		case *Switch:
			fmt.Fprintf(&b, "%s {", in.Op)
			for i, k := range o.Keys {
				var t *Inst
				if i < len(o.Targets) {
					t = o.Targets[i]
				}
				var d int32
				if i < len(o.Deltas) {
					d = o.Deltas[i]
				}
				fmt.Fprintf(&b, " %d: %d;", k, targetOffset(in, t, d))
			}
			fmt.Fprintf(&b, " default: %d }", targetOffset(in, o.DefaultTarget, o.Default))
		default:
			b.WriteString(in.String())
		}
		if p, ok := in.Operand.(*PoolRef); ok && lookup != nil {
			fmt.Fprintf(&b, "  ; %s", lookup(p.Index))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func targetOffset(from, t *Inst, d int32) int {
	if t != nil && t.Offset >= 0 {
		return t.Offset
	}
	return from.Offset + int(d)
}
