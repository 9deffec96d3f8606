package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jdeob/internal/bytecode"
	"jdeob/internal/classfile"
	"jdeob/internal/descriptor"
	"jdeob/internal/pool"
)

// writeClass assembles demo/Calc and writes it to a temp file:
//
//	static int run(int x) { return x + 1; }
//	static void main() { run(5); }
func writeClass(t *testing.T) string {
	t.Helper()
	cf := classfile.New("demo/Calc", "java/lang/Object")
	runRef := cf.Pool.MakeRef(pool.TagMethodref, "demo/Calc", "run", "(I)I")

	calc := classfile.NewMethod("run", descriptor.MustParseMethod("(I)I"))
	calc.SetAccessFlags(classfile.AccStatic)
	code := classfile.NewCode(2, 1, []*bytecode.Inst{
		bytecode.New(bytecode.ILOAD_0, nil),
		bytecode.New(bytecode.ICONST_1, nil),
		bytecode.New(bytecode.IADD, nil),
		bytecode.New(bytecode.IRETURN, nil),
	})
	code.Attrs.Add(&classfile.LocalVariableTable{Entries: []classfile.LocalVariable{{
		StartPC:         0,
		Length:          4,
		NameIndex:       cf.Pool.MakeUTF8("x"),
		DescriptorIndex: cf.Pool.MakeUTF8("I"),
		Index:           0,
	}}})
	calc.Attributes().Add(code)
	cf.Methods.Add(calc)

	entry := classfile.NewMethod("main", descriptor.MustParseMethod("()V"))
	entry.SetAccessFlags(classfile.AccStatic)
	entry.Attributes().Add(classfile.NewCode(1, 0, []*bytecode.Inst{
		bytecode.New(bytecode.ICONST_5, nil),
		bytecode.New(bytecode.INVOKESTATIC, &bytecode.PoolRef{Index: runRef}),
		bytecode.New(bytecode.POP, nil),
		bytecode.New(bytecode.RETURN, nil),
	}))
	cf.Methods.Add(entry)

	data, err := cf.Bytes()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "Calc.class")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func runCmd(t *testing.T, cmd string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(cmd, args, &out))
	return out.String()
}

func TestMethodsCommand(t *testing.T) {
	out := runCmd(t, "methods", "--class", writeClass(t))
	require.Contains(t, out, "demo/Calc (2 methods)")
	require.Contains(t, out, "run(I)I")
	require.Contains(t, out, "insts=4 stack=2 locals=1 handlers=0")
	require.Contains(t, out, "0008 s---")
}

func TestDisasmCommand(t *testing.T) {
	out := runCmd(t, "disasm", "--class", writeClass(t), "--method", "main()V")
	require.Contains(t, out, "demo/Calc.main()V")
	require.Contains(t, out, "invokestatic #")
	require.Contains(t, out, "demo/Calc.run(I)I")
	require.NotContains(t, out, "iadd")

	var sink bytes.Buffer
	require.Error(t, run("disasm", []string{"--class", writeClass(t), "--method", "nope"}, &sink))
}

func TestVarsCommand(t *testing.T) {
	out := runCmd(t, "vars", "--class", writeClass(t), "--method", "run", "--slot", "0")
	require.Contains(t, out, "iload_0")
	require.Contains(t, out, "var x I [0, 4)")

	out = runCmd(t, "vars", "--class", writeClass(t), "--method", "main", "--slot", "0")
	require.Contains(t, out, "no references")
}

func TestRoundtripCommand(t *testing.T) {
	path := writeClass(t)
	require.Contains(t, runCmd(t, "roundtrip", "--class", path), "identical")
	require.Contains(t, runCmd(t, "roundtrip", "--class", path, "--rebuild"), "identical")
}

func TestHexDiff(t *testing.T) {
	d, err := hexDiff("X.class", []byte{0xca, 0xfe, 0xba, 0xbe}, []byte{0xca, 0xfe, 0xba, 0xbf}, 1)
	require.NoError(t, err)
	require.Contains(t, d, "--- a/X.class")
	require.Contains(t, d, "+++ b/X.class")
	require.Contains(t, d, "-00000000  ca fe ba be")
	require.Contains(t, d, "+00000000  ca fe ba bf")
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	out := runCmd(t, "graph", "--class", writeClass(t), "--out", dir, "--jobs", "2")
	require.Contains(t, out, "2 methods, 0 failed")

	for _, f := range []string{
		"index.json",
		filepath.Join("dot", "cfg.dot"),
		filepath.Join("dot", "callgraph.dot"),
		filepath.Join("dot", "demo_Calc.run_I_I.dot"),
		filepath.Join("dot", "demo_Calc.main__V.dot"),
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, f)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jdeob.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"strict\"\njobs = 0\n"), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "strict", cfg.Mode)
	require.Equal(t, 1, cfg.Jobs)
	require.Equal(t, "out", cfg.Out)

	_, err = classfile.ParseMode(cfg.Mode)
	require.NoError(t, err)
}
