package main

import (
	"flag"
	"fmt"
	"io"

	"jdeob/internal/bytecode"
	"jdeob/internal/callgraph"
)

func cmdVars(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("vars", flag.ExitOnError)
	c := addCommon(fs)
	method := fs.String("method", "", "method name, or name+descriptor")
	slot := fs.Int("slot", -1, "local variable slot")
	fs.Parse(args)

	cf, err := c.setup()
	if err != nil {
		return err
	}
	if *method == "" || *slot < 0 {
		return fmt.Errorf("vars: --method and --slot are required")
	}
	methods, err := selectMethods(cf, *method)
	if err != nil {
		return err
	}

	for _, m := range methods {
		fmt.Fprintf(w, "%s slot %d\n", callgraph.QualifiedName(cf, m), *slot)
		refs := m.FindLocalVariableReferences(*slot)
		if len(refs) == 0 {
			fmt.Fprintf(w, "  no references\n")
		}
		io.WriteString(w, bytecode.Format(refs, cf.Pool.Describe))

		code := m.Code()
		if code == nil {
			continue
		}
		lvt := code.LocalVariables()
		if lvt == nil {
			continue
		}
		for _, v := range lvt.Slot(*slot) {
			name, err := cf.Pool.UTF8(v.NameIndex)
			if err != nil {
				name = fmt.Sprintf("#%d", v.NameIndex)
			}
			desc, err := cf.Pool.UTF8(v.DescriptorIndex)
			if err != nil {
				desc = fmt.Sprintf("#%d", v.DescriptorIndex)
			}
			fmt.Fprintf(w, "  var %s %s [%d, %d)\n", name, desc, v.StartPC, int(v.StartPC)+int(v.Length))
		}
	}
	return nil
}
