package callgraph

import (
	"errors"

	"jdeob/internal/bytecode"
	"jdeob/internal/classfile"
)

// QualifiedName renders m as owner.name+descriptor.
func QualifiedName(cf *classfile.ClassFile, m *classfile.Method) string {
	return cf.Name() + "." + m.String()
}

// CollectMethod builds m's instruction graph and resolves its invoke
// sites. Methods of one class may be collected concurrently as long as
// nothing mutates the class meanwhile.
func CollectMethod(cf *classfile.ClassFile, m *classfile.Method) (MethodInfo, error) {
	info := MethodInfo{Name: QualifiedName(cf, m)}
	if err := m.BuildInstructionGraph(); err != nil {
		return info, err
	}
	code := m.Code()
	if code == nil {
		return info, nil
	}
	g, _ := code.Graph()
	info.Graph = g
	for i, in := range g.Nodes() {
		if !in.Caps().Has(bytecode.CapInvoke) {
			continue
		}
		ref, ok := in.Operand.(*bytecode.PoolRef)
		if !ok {
			continue
		}
		callee := cf.Pool.Describe(ref.Index)
		if mem, err := cf.Pool.Member(ref.Index); err == nil {
			callee = mem.String()
		}
		info.Calls = append(info.Calls, CallEdge{Index: i, Op: in.Op, Callee: callee})
	}
	return info, nil
}

// Collect runs CollectMethod over every method of cf. A method that fails
// is left out and its error joined into the result.
func Collect(cf *classfile.ClassFile) ([]MethodInfo, error) {
	var (
		out  []MethodInfo
		errs []error
	)
	for _, m := range cf.Methods.List() {
		info, err := CollectMethod(cf, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, info)
	}
	return out, errors.Join(errs...)
}
