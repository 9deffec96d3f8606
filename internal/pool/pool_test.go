package pool

import (
	"bytes"
	"errors"
	"testing"

	"jdeob/internal/byteio"
)

func TestMakeUTF8_Interns(t *testing.T) {
	p := New()
	a := p.MakeUTF8("main")
	b := p.MakeUTF8("([Ljava/lang/String;)V")
	if a == b {
		t.Fatalf("distinct strings share index %d", a)
	}
	if again := p.MakeUTF8("main"); again != a {
		t.Errorf("MakeUTF8(main) = %d, want %d", again, a)
	}
	s, err := p.UTF8(a)
	if err != nil || s != "main" {
		t.Errorf("UTF8(%d) = %q, %v", a, s, err)
	}
}

func TestLongTakesTwoSlots(t *testing.T) {
	p := New()
	l := p.add(Long{Value: 42})
	next := p.MakeUTF8("x")
	if next != l+2 {
		t.Errorf("entry after long = %d, want %d", next, l+2)
	}
	if _, err := p.Entry(l + 1); !errors.Is(err, ErrBadIndex) {
		t.Errorf("second long slot: got %v, want ErrBadIndex", err)
	}
}

func TestMember(t *testing.T) {
	p := New()
	i := p.MakeRef(TagMethodref, "java/io/PrintStream", "println", "(Ljava/lang/String;)V")
	m, err := p.Member(i)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.String(); got != "java/io/PrintStream.println(Ljava/lang/String;)V" {
		t.Errorf("member = %q", got)
	}
	if j := p.MakeRef(TagMethodref, "java/io/PrintStream", "println", "(Ljava/lang/String;)V"); j != i {
		t.Errorf("MakeRef not interned: %d vs %d", j, i)
	}
	if _, err := p.Member(p.MakeUTF8("x")); !errors.Is(err, ErrWrongTag) {
		t.Errorf("Member on Utf8: got %v, want ErrWrongTag", err)
	}
}

func TestReadWrite_RoundTrip(t *testing.T) {
	p := New()
	p.MakeRef(TagFieldref, "java/lang/System", "out", "Ljava/io/PrintStream;")
	p.add(Double{Bits: 0x400921FB54442D18})
	p.add(Integer{Value: -7})
	p.add(MethodHandle{Kind: 6, RefIndex: 1})
	p.add(Dynamic{Kind: TagInvokeDynamic, BootstrapIndex: 0, NameAndTypeIndex: 4})
	p.add(Utf8{Value: "main"}) // duplicate of nothing yet
	p.add(Utf8{Value: "main"}) // true duplicate

	w := byteio.NewWriter()
	p.Write(w)
	first := append([]byte(nil), w.Bytes()...)

	q, err := Read(byteio.NewReader(first))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if q.Len() != p.Len() {
		t.Fatalf("len = %d, want %d", q.Len(), p.Len())
	}
	w2 := byteio.NewWriter()
	q.Write(w2)
	if !bytes.Equal(first, w2.Bytes()) {
		t.Errorf("re-encoded pool differs")
	}

	// The first of two equal Utf8 entries is the interned one.
	first8 := q.MakeUTF8("main")
	if s, _ := q.UTF8(first8 + 1); s != "main" {
		t.Errorf("expected duplicate main after index %d", first8)
	}
}

func TestRead_BadTag(t *testing.T) {
	_, err := Read(byteio.NewReader([]byte{0x00, 0x02, 0x02}))
	if !errors.Is(err, ErrBadTag) {
		t.Errorf("got %v, want ErrBadTag", err)
	}
}
