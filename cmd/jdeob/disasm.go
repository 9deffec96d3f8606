package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"jdeob/internal/bytecode"
	"jdeob/internal/callgraph"
	"jdeob/internal/classfile"
	"jdeob/internal/output"
)

func cmdDisasm(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	c := addCommon(fs)
	method := fs.String("method", "", "only this method (name, or name+descriptor)")
	outDir := fs.String("out", "", "write asm/<method>.txt files instead of stdout")
	fs.Parse(args)

	cf, err := c.setup()
	if err != nil {
		return err
	}
	methods, err := selectMethods(cf, *method)
	if err != nil {
		return err
	}

	for _, m := range methods {
		text := listing(cf, m)
		if *outDir == "" {
			io.WriteString(w, text)
			continue
		}
		path, err := output.WriteListing(*outDir, output.FileName(callgraph.QualifiedName(cf, m)), text)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", path)
	}
	return nil
}

// selectMethods resolves the --method flag. An empty spec selects all.
func selectMethods(cf *classfile.ClassFile, spec string) ([]*classfile.Method, error) {
	if spec == "" {
		return cf.Methods.List(), nil
	}
	name, desc := spec, ""
	if i := strings.IndexByte(spec, '('); i >= 0 {
		name, desc = spec[:i], spec[i:]
	}
	var out []*classfile.Method
	for _, m := range cf.Methods.List() {
		if m.Name() == name && (desc == "" || m.Descriptor().String() == desc) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no method %s", cf.Name(), spec)
	}
	return out, nil
}

// listing renders one method: header, instructions and exception table.
func listing(cf *classfile.ClassFile, m *classfile.Method) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  // flags %s\n", callgraph.QualifiedName(cf, m), flagString(m))
	code := m.Code()
	if code == nil {
		fmt.Fprintf(&b, "  // %s\n\n", noCode(m))
		return b.String()
	}
	fmt.Fprintf(&b, "  // stack=%d locals=%d\n", code.MaxStack, code.MaxLocals)
	b.WriteString(bytecode.Format(code.Instructions().List(), cf.Pool.Describe))
	for i, h := range code.Handlers {
		catch, err := code.CatchType(cf.Pool, h)
		switch {
		case err != nil:
			catch = err.Error()
		case catch == "":
			catch = "any"
		}
		fmt.Fprintf(&b, "  handler %d: [%d, %d) -> %d  %s\n", i, h.Start, h.End, h.Handler, catch)
	}
	b.WriteByte('\n')
	return b.String()
}
