// Package descriptor parses and renders JVM field and method descriptors.
package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

var ErrSyntax = errors.New("descriptor: invalid syntax")

// Type is one field type in descriptor form, e.g. "I", "[J",
// "Ljava/lang/String;". "V" is only valid as a return type.
type Type string

const (
	Void    Type = "V"
	Boolean Type = "Z"
	Byte    Type = "B"
	Char    Type = "C"
	Short   Type = "S"
	Int     Type = "I"
	Long    Type = "J"
	Float   Type = "F"
	Double  Type = "D"
)

// Slots returns the number of local variable slots a value of t occupies.
func (t Type) Slots() int {
	switch t {
	case Long, Double:
		return 2
	case Void:
		return 0
	}
	return 1
}

// Dimensions returns the array depth of t.
func (t Type) Dimensions() int {
	return len(t) - len(strings.TrimLeft(string(t), "["))
}

// ClassName returns the internal class name for object types, or "".
func (t Type) ClassName() string {
	s := strings.TrimLeft(string(t), "[")
	if len(s) > 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		return s[1 : len(s)-1]
	}
	return ""
}

// ParseType parses a single field type.
func ParseType(s string) (Type, error) {
	n, err := scanType(s, 0, false)
	if err != nil {
		return "", err
	}
	if n != len(s) {
		return "", fmt.Errorf("%w: trailing data in %q", ErrSyntax, s)
	}
	return Type(s), nil
}

// scanType returns the end offset of the field type starting at i.
func scanType(s string, i int, allowVoid bool) (int, error) {
	start := i
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i-start > 255 {
		return 0, fmt.Errorf("%w: more than 255 dimensions in %q", ErrSyntax, s)
	}
	if i >= len(s) {
		return 0, fmt.Errorf("%w: truncated type in %q", ErrSyntax, s)
	}
	switch s[i] {
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		return i + 1, nil
	case 'V':
		if allowVoid && i == start {
			return i + 1, nil
		}
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end <= 1 {
			break
		}
		return i + end + 1, nil
	}
	return 0, fmt.Errorf("%w: bad type at %d in %q", ErrSyntax, i, s)
}

// Method is a parsed method descriptor. It is an immutable value.
type Method struct {
	args []Type
	ret  Type
}

// NewMethod builds a descriptor from its parts.
func NewMethod(ret Type, args ...Type) Method {
	return Method{args: append([]Type(nil), args...), ret: ret}
}

// ParseMethod parses a descriptor such as "(ILjava/lang/String;)V".
func ParseMethod(s string) (Method, error) {
	if len(s) < 3 || s[0] != '(' {
		return Method{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	var m Method
	i := 1
	for i < len(s) && s[i] != ')' {
		end, err := scanType(s, i, false)
		if err != nil {
			return Method{}, err
		}
		m.args = append(m.args, Type(s[i:end]))
		i = end
	}
	if i >= len(s) {
		return Method{}, fmt.Errorf("%w: unterminated arguments in %q", ErrSyntax, s)
	}
	i++
	end, err := scanType(s, i, true)
	if err != nil {
		return Method{}, err
	}
	if end != len(s) {
		return Method{}, fmt.Errorf("%w: trailing data in %q", ErrSyntax, s)
	}
	m.ret = Type(s[i:end])
	return m, nil
}

// MustParseMethod is ParseMethod for literals known to be valid.
func MustParseMethod(s string) Method {
	m, err := ParseMethod(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Args returns a copy of the argument types.
func (m Method) Args() []Type { return append([]Type(nil), m.args...) }

// NumArgs returns the argument count.
func (m Method) NumArgs() int { return len(m.args) }

// Arg returns argument i.
func (m Method) Arg(i int) Type { return m.args[i] }

// Return returns the return type.
func (m Method) Return() Type { return m.ret }

// ArgSlots returns the local variable slots taken by the arguments, not
// counting the receiver of an instance method.
func (m Method) ArgSlots() int {
	n := 0
	for _, a := range m.args {
		n += a.Slots()
	}
	return n
}

// Equal reports whether two descriptors render identically.
func (m Method) Equal(o Method) bool { return m.String() == o.String() }

func (m Method) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, a := range m.args {
		b.WriteString(string(a))
	}
	b.WriteByte(')')
	b.WriteString(string(m.ret))
	return b.String()
}
