package classfile

import (
	"jdeob/internal/byteio"
)

// Code arrays of the fixture methods.
var (
	// 0 iconst_0; 1 ifeq 8; 4 iconst_1; 5 goto 9; 8 iconst_2; 9 return
	runCode = []byte{0x03, 0x99, 0x00, 0x07, 0x04, 0xa7, 0x00, 0x04, 0x05, 0xb1}

	// 0 aload_0; 1 invokevirtual #24; 4 pop; 5 goto 11; 8 iconst_1;
	// 9 ireturn; 10 astore_1; 11 return
	guardedCode = []byte{0x2a, 0xb6, 0x00, 0x18, 0x57, 0xa7, 0x00, 0x06, 0x04, 0xac, 0x4c, 0xb1}
)

// fixture assembles a small class by hand:
//
//	public class Test {
//	    public static void run()                          // LineNumberTable
//	    public synchronized int guarded(Object) throws Exception
//	    public abstract void abs()
//	}
//
// The pool holds a second "Code" entry (#18) that guarded's Code
// attribute is named by, so rewriting through MakeUTF8 would be visible.
func fixture() []byte {
	w := byteio.NewWriter()
	w.U32(Magic)
	w.U16(0)
	w.U16(52)

	utf8 := func(s string) {
		w.U8(1)
		w.U16(uint16(len(s)))
		w.Write([]byte(s))
	}
	u16s := func(tag uint8, vs ...uint16) {
		w.U8(tag)
		for _, v := range vs {
			w.U16(v)
		}
	}
	w.U16(25)
	utf8("Test")                  // 1
	u16s(7, 1)                    // 2 Class Test
	utf8("java/lang/Object")      // 3
	u16s(7, 3)                    // 4 Class Object
	utf8("Code")                  // 5
	utf8("run")                   // 6
	utf8("()V")                   // 7
	utf8("guarded")               // 8
	utf8("(Ljava/lang/Object;)I") // 9
	utf8("java/lang/Exception")   // 10
	u16s(7, 10)                   // 11 Class Exception
	utf8("LineNumberTable")       // 12
	utf8("LocalVariableTable")    // 13
	utf8("obj")                   // 14
	utf8("Ljava/lang/Object;")    // 15
	utf8("Exceptions")            // 16
	utf8("abs")                   // 17
	utf8("Code")                  // 18 duplicate
	utf8("SourceFile")            // 19
	utf8("Test.java")             // 20
	utf8("hashCode")              // 21
	utf8("()I")                   // 22
	u16s(12, 21, 22)              // 23 NameAndType hashCode()I
	u16s(10, 4, 23)               // 24 Methodref Object.hashCode()I

	w.U16(0x0021) // access
	w.U16(2)      // this
	w.U16(4)      // super
	w.U16(0)      // interfaces
	w.U16(0)      // fields
	w.U16(3)      // methods

	// run
	w.U16(0x0009)
	w.U16(6)
	w.U16(7)
	w.U16(1)
	w.U16(5)
	lnt := []uint16{0, 1, 4, 2, 8, 3}
	w.U32(uint32(2 + 2 + 4 + len(runCode) + 2 + 2 + 6 + 2 + 2*len(lnt)))
	w.U16(1)
	w.U16(0)
	w.U32(uint32(len(runCode)))
	w.Write(runCode)
	w.U16(0) // handlers
	w.U16(1) // attributes
	w.U16(12)
	w.U32(uint32(2 + 2*len(lnt)))
	w.U16(uint16(len(lnt) / 2))
	for _, v := range lnt {
		w.U16(v)
	}

	// guarded
	w.U16(0x0021)
	w.U16(8)
	w.U16(9)
	w.U16(2)
	w.U16(18)
	w.U32(uint32(2 + 2 + 4 + len(guardedCode) + 2 + 8 + 2 + 6 + 2 + 10))
	w.U16(2)
	w.U16(2)
	w.U32(uint32(len(guardedCode)))
	w.Write(guardedCode)
	w.U16(1)
	for _, v := range []uint16{0, 5, 10, 11} {
		w.U16(v)
	}
	w.U16(1)
	w.U16(13)
	w.U32(2 + 10)
	w.U16(1)
	for _, v := range []uint16{0, 12, 14, 15, 0} {
		w.U16(v)
	}
	w.U16(16) // Exceptions
	w.U32(4)
	w.U16(1)
	w.U16(11)

	// abs
	w.U16(0x0401)
	w.U16(17)
	w.U16(7)
	w.U16(0)

	w.U16(1) // class attributes
	w.U16(19)
	w.U32(2)
	w.U16(20)
	return append([]byte(nil), w.Bytes()...)
}
