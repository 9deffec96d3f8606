package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "methods":
		return cmdMethods(args, w)
	case "disasm":
		return cmdDisasm(args, w)
	case "graph":
		return cmdGraph(args, w)
	case "vars":
		return cmdVars(args, w)
	case "roundtrip":
		return cmdRoundtrip(args, w)
	}
	usage()
	return fmt.Errorf("unknown command: %s", cmd)
}

func usage() {
	fmt.Fprintf(os.Stderr, `jdeob: JVM method and instruction graph inspector

Usage:
  jdeob methods   --class <file>                         List methods with flags and code size
  jdeob disasm    --class <file> [--method <name>] [--out <dir>]
                                                         Instruction listing with resolved targets
  jdeob graph     --class <file> --out <dir> [--jobs n]  Per-method instruction graphs, CFG and call graph
  jdeob vars      --class <file> --method <name> --slot <n>
                                                         Instructions and debug entries for a local slot
  jdeob roundtrip --class <file> [--rebuild]             Parse, re-encode and compare bytes

Flags:
  --config <file>   jdeob.toml with defaults for mode, jobs and out
  --mode <mode>     strict | best-effort (default best-effort)
  -v <n>            Log verbosity
`)
}
