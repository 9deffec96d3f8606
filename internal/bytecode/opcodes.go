package bytecode

import "fmt"

// Op is a JVM opcode.
type Op uint8

const (
	NOP             Op = 0x00
	ACONST_NULL     Op = 0x01
	ICONST_M1       Op = 0x02
	ICONST_0        Op = 0x03
	ICONST_1        Op = 0x04
	ICONST_2        Op = 0x05
	ICONST_3        Op = 0x06
	ICONST_4        Op = 0x07
	ICONST_5        Op = 0x08
	LCONST_0        Op = 0x09
	LCONST_1        Op = 0x0a
	FCONST_0        Op = 0x0b
	FCONST_2        Op = 0x0d
	DCONST_0        Op = 0x0e
	DCONST_1        Op = 0x0f
	BIPUSH          Op = 0x10
	SIPUSH          Op = 0x11
	LDC             Op = 0x12
	LDC_W           Op = 0x13
	LDC2_W          Op = 0x14
	ILOAD           Op = 0x15
	LLOAD           Op = 0x16
	FLOAD           Op = 0x17
	DLOAD           Op = 0x18
	ALOAD           Op = 0x19
	ILOAD_0         Op = 0x1a
	ALOAD_0         Op = 0x2a
	ALOAD_3         Op = 0x2d
	IALOAD          Op = 0x2e
	SALOAD          Op = 0x35
	ISTORE          Op = 0x36
	LSTORE          Op = 0x37
	FSTORE          Op = 0x38
	DSTORE          Op = 0x39
	ASTORE          Op = 0x3a
	ISTORE_0        Op = 0x3b
	ASTORE_0        Op = 0x4b
	ASTORE_3        Op = 0x4e
	IASTORE         Op = 0x4f
	SASTORE         Op = 0x56
	POP             Op = 0x57
	SWAP            Op = 0x5f
	IADD            Op = 0x60
	IDIV            Op = 0x6c
	LDIV            Op = 0x6d
	IREM            Op = 0x70
	LREM            Op = 0x71
	IINC            Op = 0x84
	IFEQ            Op = 0x99
	IFNE            Op = 0x9a
	IFLT            Op = 0x9b
	IFGE            Op = 0x9c
	IFGT            Op = 0x9d
	IFLE            Op = 0x9e
	IF_ICMPEQ       Op = 0x9f
	IF_ICMPNE       Op = 0xa0
	IF_ICMPLT       Op = 0xa1
	IF_ICMPGE       Op = 0xa2
	IF_ICMPGT       Op = 0xa3
	IF_ICMPLE       Op = 0xa4
	IF_ACMPEQ       Op = 0xa5
	IF_ACMPNE       Op = 0xa6
	GOTO            Op = 0xa7
	JSR             Op = 0xa8
	RET             Op = 0xa9
	TABLESWITCH     Op = 0xaa
	LOOKUPSWITCH    Op = 0xab
	IRETURN         Op = 0xac
	RETURN          Op = 0xb1
	GETSTATIC       Op = 0xb2
	PUTSTATIC       Op = 0xb3
	GETFIELD        Op = 0xb4
	PUTFIELD        Op = 0xb5
	INVOKEVIRTUAL   Op = 0xb6
	INVOKESPECIAL   Op = 0xb7
	INVOKESTATIC    Op = 0xb8
	INVOKEINTERFACE Op = 0xb9
	INVOKEDYNAMIC   Op = 0xba
	NEW             Op = 0xbb
	NEWARRAY        Op = 0xbc
	ANEWARRAY       Op = 0xbd
	ARRAYLENGTH     Op = 0xbe
	ATHROW          Op = 0xbf
	CHECKCAST       Op = 0xc0
	INSTANCEOF      Op = 0xc1
	MONITORENTER    Op = 0xc2
	MONITOREXIT     Op = 0xc3
	WIDE            Op = 0xc4
	MULTIANEWARRAY  Op = 0xc5
	IFNULL          Op = 0xc6
	IFNONNULL       Op = 0xc7
	GOTO_W          Op = 0xc8
	JSR_W           Op = 0xc9
)

// opNames is indexed by opcode; unassigned opcodes are empty.
var opNames = [256]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4",
	"iconst_5", "lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1",
	"bipush", "sipush", "ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload",
	"dload", "aload", "iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3", "dload_0", "dload_1",
	"dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload", "laload",
	"faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore",
	"fstore", "dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0",
	"dstore_1", "dstore_2", "dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore",
	"lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore", "pop",
	"pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
	"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
	"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
	"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land",
	"ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d",
	"l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l",
	"d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl",
	"dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle", "if_icmpeq",
	"if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne", "goto",
	"jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn",
	"areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual", "invokespecial",
	"invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray", "arraylength", "athrow",
	"checkcast", "instanceof", "monitorenter", "monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w",
}

func (op Op) String() string {
	if s := opNames[op]; s != "" {
		return s
	}
	return fmt.Sprintf("op_0x%02x", uint8(op))
}

// Valid reports whether op is an assigned opcode other than the wide prefix.
func (op Op) Valid() bool { return op <= JSR_W && op != WIDE }

// Cap is a set of capability tags describing how an instruction behaves.
type Cap uint16

const (
	CapCondBranch   Cap = 1 << iota // branches to a target or falls through
	CapJump                         // transfers to a target unconditionally
	CapSwitch                       // multi-way transfer
	CapThrows                       // may raise an exception
	CapLocal                        // reads or writes a local variable slot
	CapReturn                       // returns from the method
	CapFallsThrough                 // control may continue at the next instruction
	CapInvoke                       // invokes a method
	CapPool                         // operand indexes the constant pool
)

// Has reports whether all bits of c2 are set in c.
func (c Cap) Has(c2 Cap) bool { return c&c2 == c2 }

// Unconditional reports whether c has no fall-through.
func (c Cap) Unconditional() bool { return c&CapFallsThrough == 0 }

var opCaps [256]Cap

func init() {
	for op := 0; op <= int(JSR_W); op++ {
		opCaps[op] = CapFallsThrough
	}
	set := func(c Cap, lo, hi Op) {
		for op := int(lo); op <= int(hi); op++ {
			opCaps[op] |= c
		}
	}
	unset := func(c Cap, ops ...Op) {
		for _, op := range ops {
			opCaps[op] &^= c
		}
	}

	set(CapLocal, ILOAD, ALOAD_3)
	set(CapLocal, ISTORE, ASTORE_3)
	set(CapLocal, IINC, IINC)
	set(CapLocal, RET, RET)

	set(CapCondBranch, IFEQ, IF_ACMPNE)
	set(CapCondBranch, IFNULL, IFNONNULL)
	set(CapJump, GOTO, GOTO)
	set(CapJump, GOTO_W, GOTO_W)
	// jsr transfers to the subroutine; its ret resumes at the next instruction.
	set(CapJump, JSR, JSR)
	set(CapJump, JSR_W, JSR_W)
	unset(CapFallsThrough, GOTO, GOTO_W, RET)

	set(CapSwitch, TABLESWITCH, LOOKUPSWITCH)
	unset(CapFallsThrough, TABLESWITCH, LOOKUPSWITCH)

	set(CapReturn, IRETURN, RETURN)
	unset(CapFallsThrough, IRETURN, IRETURN+1, IRETURN+2, IRETURN+3, IRETURN+4, RETURN)

	set(CapThrows, ATHROW, ATHROW)
	unset(CapFallsThrough, ATHROW)

	set(CapInvoke, INVOKEVIRTUAL, INVOKEDYNAMIC)
	set(CapPool, LDC, LDC2_W)
	set(CapPool, GETSTATIC, NEW)
	set(CapPool, ANEWARRAY, ANEWARRAY)
	set(CapPool, CHECKCAST, INSTANCEOF)
	set(CapPool, MULTIANEWARRAY, MULTIANEWARRAY)

	set(CapThrows, IALOAD, SALOAD)
	set(CapThrows, IASTORE, SASTORE)
	set(CapThrows, IDIV, LDIV)
	set(CapThrows, IREM, LREM)
	set(CapThrows, IRETURN, RETURN)
	set(CapThrows, GETSTATIC, MONITOREXIT)
	set(CapThrows, MULTIANEWARRAY, MULTIANEWARRAY)
	set(CapThrows, LDC, LDC2_W)

	// The prefix byte is never an instruction on its own.
	opCaps[WIDE] = 0
}

// Caps returns the capability tags of op.
func (op Op) Caps() Cap { return opCaps[op] }

// implicitSlot returns the slot encoded in xload_n / xstore_n.
func implicitSlot(op Op) (int, bool) {
	switch {
	case op >= ILOAD_0 && op <= ALOAD_3:
		return int(op-ILOAD_0) % 4, true
	case op >= ISTORE_0 && op <= ASTORE_3:
		return int(op-ISTORE_0) % 4, true
	}
	return 0, false
}

// explicitForm maps xload_n / xstore_n to xload / xstore.
func explicitForm(op Op) Op {
	switch {
	case op >= ILOAD_0 && op <= ALOAD_3:
		return ILOAD + (op-ILOAD_0)/4
	case op >= ISTORE_0 && op <= ASTORE_3:
		return ISTORE + (op-ISTORE_0)/4
	}
	return op
}

// compactForm maps xload / xstore plus a slot 0..3 to xload_n / xstore_n.
func compactForm(op Op, slot int) (Op, bool) {
	if slot < 0 || slot > 3 {
		return op, false
	}
	switch {
	case op >= ILOAD && op <= ALOAD:
		return ILOAD_0 + (op-ILOAD)*4 + Op(slot), true
	case op >= ISTORE && op <= ASTORE:
		return ISTORE_0 + (op-ISTORE)*4 + Op(slot), true
	}
	return op, false
}
