package bytecode

import (
	"errors"
	"fmt"

	"jdeob/internal/byteio"
)

var (
	ErrBadOpcode = errors.New("bytecode: invalid opcode")
	ErrTruncated = errors.New("bytecode: truncated instruction")
	ErrBadSwitch = errors.New("bytecode: malformed switch")
)

// maxSwitchCases bounds switch tables so a corrupt length cannot force a
// huge allocation. A switch can never be larger than the 64 KiB code array.
const maxSwitchCases = 1 << 14

// OffsetError locates a decode or encode failure within the code array.
type OffsetError struct {
	Offset int
	Op     Op
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("offset %d (%s): %v", e.Offset, e.Op, e.Err)
}

func (e *OffsetError) Unwrap() error { return e.Err }

// Decode decodes a code array into instructions in stream order.
//
// Offsets are absolute within code, so switch padding is computed from
// the real stream position. Targets are left unbound; BuildGraph binds them.
func Decode(code []byte) ([]*Inst, error) {
	r := byteio.NewReader(code)
	insts := make([]*Inst, 0, len(code)/2)
	for r.Remaining() > 0 {
		off := r.Position()
		in, err := decodeOne(r, off)
		if err != nil {
			if errors.Is(err, byteio.ErrEOF) || errors.Is(err, byteio.ErrOverrun) {
				err = ErrTruncated
			}
			var op Op
			if off < len(code) {
				op = Op(code[off])
			}
			return nil, &OffsetError{Offset: off, Op: op, Err: err}
		}
		insts = append(insts, in)
	}
	return insts, nil
}

func decodeOne(r *byteio.Reader, off int) (*Inst, error) {
	b, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	op := Op(b)
	in := &Inst{Offset: off, Op: op}
	if op == WIDE {
		return decodeWide(r, in)
	}
	if !op.Valid() {
		return nil, ErrBadOpcode
	}

	switch {
	case op == BIPUSH || op == NEWARRAY:
		v, err := r.ReadS8()
		if err != nil {
			return nil, err
		}
		if op == NEWARRAY {
			in.Operand = &Immediate{Value: int32(uint8(v))}
		} else {
			in.Operand = &Immediate{Value: int32(v)}
		}
	case op == SIPUSH:
		v, err := r.ReadS16()
		if err != nil {
			return nil, err
		}
		in.Operand = &Immediate{Value: int32(v)}
	case op == LDC:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		in.Operand = &PoolRef{Index: uint16(v)}
	case op >= ILOAD && op <= ALOAD, op >= ISTORE && op <= ASTORE, op == RET:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		in.Operand = &Local{Slot: uint16(v)}
	case op == IINC:
		slot, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		delta, err := r.ReadS8()
		if err != nil {
			return nil, err
		}
		in.Operand = &Iinc{Slot: uint16(slot), Delta: int16(delta)}
	case op == GOTO_W || op == JSR_W:
		d, err := r.ReadS32()
		if err != nil {
			return nil, err
		}
		in.Operand = &Jump{Delta: d}
	case op.Caps().Has(CapCondBranch) || op == GOTO || op == JSR:
		d, err := r.ReadS16()
		if err != nil {
			return nil, err
		}
		in.Operand = &Jump{Delta: int32(d)}
	case op == TABLESWITCH:
		sw, err := decodeTableSwitch(r)
		if err != nil {
			return nil, err
		}
		in.Operand = sw
	case op == LOOKUPSWITCH:
		sw, err := decodeLookupSwitch(r)
		if err != nil {
			return nil, err
		}
		in.Operand = sw
	case op == INVOKEINTERFACE || op == INVOKEDYNAMIC:
		idx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		count, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		// The fourth byte is always zero.
		if err := r.Skip(1); err != nil {
			return nil, err
		}
		in.Operand = &PoolRef{Index: idx, Count: count}
	case op == MULTIANEWARRAY:
		idx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		dims, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		in.Operand = &PoolRef{Index: idx, Count: dims}
	case op.Caps().Has(CapPool):
		idx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		in.Operand = &PoolRef{Index: idx}
	}
	return in, nil
}

func decodeWide(r *byteio.Reader, in *Inst) (*Inst, error) {
	b, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	in.Op = Op(b)
	slot, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	switch op := in.Op; {
	case op == IINC:
		delta, err := r.ReadS16()
		if err != nil {
			return nil, err
		}
		in.Operand = &Iinc{Slot: slot, Delta: delta, Wide: true}
	case op >= ILOAD && op <= ALOAD, op >= ISTORE && op <= ASTORE, op == RET:
		in.Operand = &Local{Slot: slot, Wide: true}
	default:
		return nil, fmt.Errorf("%w: wide %s", ErrBadOpcode, op)
	}
	return in, nil
}

func decodeTableSwitch(r *byteio.Reader) (*Switch, error) {
	if err := r.Align(4); err != nil {
		return nil, err
	}
	def, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	low, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	high, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	n := int64(high) - int64(low) + 1
	if n < 0 || n > maxSwitchCases {
		return nil, fmt.Errorf("%w: tableswitch low=%d high=%d", ErrBadSwitch, low, high)
	}
	sw := &Switch{Default: def, Keys: make([]int32, n), Deltas: make([]int32, n), Targets: make([]*Inst, n)}
	for i := range sw.Deltas {
		d, err := r.ReadS32()
		if err != nil {
			return nil, err
		}
		sw.Keys[i] = low + int32(i)
		sw.Deltas[i] = d
	}
	return sw, nil
}

func decodeLookupSwitch(r *byteio.Reader) (*Switch, error) {
	if err := r.Align(4); err != nil {
		return nil, err
	}
	def, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	npairs, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	if npairs < 0 || npairs > maxSwitchCases {
		return nil, fmt.Errorf("%w: lookupswitch npairs=%d", ErrBadSwitch, npairs)
	}
	sw := &Switch{Default: def, Keys: make([]int32, npairs), Deltas: make([]int32, npairs), Targets: make([]*Inst, npairs)}
	for i := range sw.Keys {
		if sw.Keys[i], err = r.ReadS32(); err != nil {
			return nil, err
		}
		if sw.Deltas[i], err = r.ReadS32(); err != nil {
			return nil, err
		}
	}
	return sw, nil
}
