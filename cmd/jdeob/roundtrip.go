package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

func cmdRoundtrip(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	c := addCommon(fs)
	rebuild := fs.Bool("rebuild", false, "build every instruction graph before re-encoding")
	context := fs.Int("context", 3, "context lines in the hex diff")
	fs.Parse(args)

	cf, err := c.setup()
	if err != nil {
		return err
	}
	if *rebuild {
		if err := cf.Methods.BuildInstructionGraphs(); err != nil {
			log.Warningf("%v", err)
		}
	}
	orig, err := os.ReadFile(c.class)
	if err != nil {
		return err
	}
	out, err := cf.Bytes()
	if err != nil {
		return err
	}

	if bytes.Equal(orig, out) {
		fmt.Fprintf(w, "%s: identical (%d bytes)\n", c.class, len(out))
		return nil
	}
	diff, err := hexDiff(c.class, orig, out, *context)
	if err != nil {
		return err
	}
	io.WriteString(w, diff)
	return fmt.Errorf("roundtrip: %s: re-encoded %d bytes, original %d", c.class, len(out), len(orig))
}

// hexDiff renders a unified diff of the two hex dumps, so differing
// offsets line up.
func hexDiff(name string, a, b []byte, context int) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(hex.Dump(a)),
		B:        difflib.SplitLines(hex.Dump(b)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("roundtrip: diff: %w", err)
	}
	return strings.TrimRight(s, "\n") + "\n", nil
}
