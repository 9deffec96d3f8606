package classfile

import (
	"errors"
	"fmt"

	"jdeob/internal/bytecode"
)

var (
	ErrBadMagic   = errors.New("classfile: bad magic")
	ErrAttrLength = errors.New("classfile: attribute length does not match its contents")
	ErrTrailing   = errors.New("classfile: trailing bytes after class file")
)

// MethodError is a failure confined to one method. Offset is the code
// array offset of the failing instruction, or -1 when the failure is not
// tied to an instruction.
type MethodError struct {
	Name       string
	Descriptor string
	Offset     int
	Err        error
}

func (e *MethodError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("classfile: method %s%s at offset %d: %v", e.Name, e.Descriptor, e.Offset, e.Err)
	}
	return fmt.Sprintf("classfile: method %s%s: %v", e.Name, e.Descriptor, e.Err)
}

func (e *MethodError) Unwrap() error { return e.Err }

// errOffset extracts the code offset carried by a bytecode error.
func errOffset(err error) int {
	var te *bytecode.TargetError
	if errors.As(err, &te) {
		if te.From >= 0 {
			return te.From
		}
		return te.Target
	}
	var oe *bytecode.OffsetError
	if errors.As(err, &oe) {
		return oe.Offset
	}
	return -1
}
