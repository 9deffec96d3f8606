package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"jdeob/internal/classfile"
)

func cmdMethods(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("methods", flag.ExitOnError)
	c := addCommon(fs)
	fs.Parse(args)

	cf, err := c.setup()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d methods)\n", cf.Name(), cf.Methods.Len())
	for _, m := range cf.Methods.List() {
		code := m.Code()
		if code == nil {
			fmt.Fprintf(w, "  %-8s %-40s %s\n", flagString(m), m, noCode(m))
			continue
		}
		fmt.Fprintf(w, "  %-8s %-40s insts=%d stack=%d locals=%d handlers=%d\n",
			flagString(m), m, code.Instructions().Len(), code.MaxStack, code.MaxLocals, len(code.Handlers))
	}
	return nil
}

// flagString renders the access flags jdeob cares about as letters:
// s static, y synchronized, a abstract, n native.
func flagString(m *classfile.Method) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04x ", m.AccessFlags())
	for _, f := range []struct {
		on bool
		c  byte
	}{
		{m.IsStatic(), 's'},
		{m.IsSynchronized(), 'y'},
		{m.IsAbstract(), 'a'},
		{m.IsNative(), 'n'},
	} {
		if f.on {
			b.WriteByte(f.c)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func noCode(m *classfile.Method) string {
	switch {
	case m.IsAbstract(), m.IsNative():
		return "no code"
	case m.Attributes().Find(classfile.AttrCode) != nil:
		return "code kept raw"
	}
	return "no code"
}
