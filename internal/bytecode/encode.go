package bytecode

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"jdeob/internal/byteio"
)

var (
	ErrDanglingTarget = errors.New("bytecode: branch target is not in the sequence")
	ErrBranchRange    = errors.New("bytecode: branch offset does not fit its encoding")
	ErrCodeTooLarge   = errors.New("bytecode: code exceeds 65535 bytes")
)

// Size returns the encoded size of in when placed at offset off. Only the
// switch instructions depend on off, through their alignment padding.
func (in *Inst) Size(off int) int {
	op := in.Op
	switch o := in.Operand.(type) {
	case *Local:
		if o.Wide {
			return 4
		}
		return 2
	case *Iinc:
		if o.Wide {
			return 6
		}
		return 3
	case *Jump:
		if op == GOTO_W || op == JSR_W {
			return 5
		}
		return 3
	case *Switch:
		pad := (4 - (off+1)%4) % 4
		if op == TABLESWITCH {
			return 1 + pad + 12 + 4*len(o.Keys)
		}
		return 1 + pad + 8 + 8*len(o.Keys)
	case *PoolRef:
		switch op {
		case LDC:
			return 2
		case INVOKEINTERFACE, INVOKEDYNAMIC:
			return 5
		case MULTIANEWARRAY:
			return 4
		}
		return 3
	case *Immediate:
		if op == SIPUSH {
			return 3
		}
		return 2
	}
	return 1
}

// Assembled is the result of Encode.
type Assembled struct {
	Code  []byte
	olds  []int // pre-layout offsets, ascending
	news  []int // matching post-layout offsets
	total int
}

// PC maps a pre-layout offset to the post-layout offset of the first
// surviving instruction at or after it. Offsets past the last instruction
// map to the new code length.
func (a *Assembled) PC(old int) int {
	i := sort.SearchInts(a.olds, old)
	if i == len(a.olds) {
		return a.total
	}
	return a.news[i]
}

// Encode lays out insts in place and emits the code array.
//
// Unbound targets are first bound through the current offsets, then every
// instruction gets its new offset and every branch delta is recomputed from
// its target. Instructions created with New (Offset -1) take part in the
// layout but not in the offset map. On failure the offsets and deltas are
// left as they were.
func Encode(insts []*Inst) (*Assembled, error) {
	if err := bindTargets(insts); err != nil {
		return nil, err
	}
	member := make(map[*Inst]bool, len(insts))
	for _, in := range insts {
		member[in] = true
	}

	saved := saveLayout(insts)
	asm, err := layout(insts, member)
	if err != nil {
		saved.restore()
		return nil, err
	}
	return asm, nil
}

func layout(insts []*Inst, member map[*Inst]bool) (*Assembled, error) {
	type pair struct{ old, new int }
	pairs := make([]pair, 0, len(insts))
	off := 0
	for _, in := range insts {
		if in.Offset >= 0 {
			pairs = append(pairs, pair{in.Offset, off})
		}
		in.Offset = off
		off += in.Size(off)
	}
	if off > math.MaxUint16 {
		return nil, ErrCodeTooLarge
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].old < pairs[j].old })
	asm := &Assembled{total: off}
	for _, p := range pairs {
		asm.olds = append(asm.olds, p.old)
		asm.news = append(asm.news, p.new)
	}

	w := byteio.NewWriter()
	for _, in := range insts {
		if err := encodeOne(w, in, member); err != nil {
			return nil, &OffsetError{Offset: in.Offset, Op: in.Op, Err: err}
		}
	}
	asm.Code = w.Bytes()
	return asm, nil
}

// savedLayout holds the offsets and branch deltas a layout pass rewrites.
type savedLayout struct {
	insts   []*Inst
	offsets []int
	deltas  [][]int32 // per instruction: jump delta, or switch default then cases
}

func saveLayout(insts []*Inst) *savedLayout {
	s := &savedLayout{
		insts:   insts,
		offsets: make([]int, len(insts)),
		deltas:  make([][]int32, len(insts)),
	}
	for i, in := range insts {
		s.offsets[i] = in.Offset
		switch o := in.Operand.(type) {
		case *Jump:
			s.deltas[i] = []int32{o.Delta}
		case *Switch:
			s.deltas[i] = append([]int32{o.Default}, o.Deltas...)
		}
	}
	return s
}

func (s *savedLayout) restore() {
	for i, in := range s.insts {
		in.Offset = s.offsets[i]
		switch o := in.Operand.(type) {
		case *Jump:
			o.Delta = s.deltas[i][0]
		case *Switch:
			o.Default = s.deltas[i][0]
			o.Deltas = append(o.Deltas[:0], s.deltas[i][1:]...)
		}
	}
}

func delta(from, to *Inst, member map[*Inst]bool) (int32, error) {
	if to == nil || !member[to] {
		return 0, ErrDanglingTarget
	}
	return int32(to.Offset - from.Offset), nil
}

func encodeOne(w *byteio.Writer, in *Inst, member map[*Inst]bool) error {
	switch o := in.Operand.(type) {
	case nil:
		w.U8(uint8(in.Op))
	case *Local:
		if o.Wide {
			w.U8(uint8(WIDE))
			w.U8(uint8(in.Op))
			w.U16(o.Slot)
			return nil
		}
		if o.Slot > 0xff {
			return fmt.Errorf("slot %d needs wide", o.Slot)
		}
		w.U8(uint8(in.Op))
		w.U8(uint8(o.Slot))
	case *Iinc:
		if o.Wide {
			w.U8(uint8(WIDE))
			w.U8(uint8(IINC))
			w.U16(o.Slot)
			w.S16(o.Delta)
			return nil
		}
		if o.Slot > 0xff || o.Delta < math.MinInt8 || o.Delta > math.MaxInt8 {
			return fmt.Errorf("iinc %d %d needs wide", o.Slot, o.Delta)
		}
		w.U8(uint8(IINC))
		w.U8(uint8(o.Slot))
		w.S8(int8(o.Delta))
	case *Jump:
		d, err := delta(in, o.Target, member)
		if err != nil {
			return err
		}
		o.Delta = d
		w.U8(uint8(in.Op))
		if in.Op == GOTO_W || in.Op == JSR_W {
			w.S32(d)
			return nil
		}
		if d < math.MinInt16 || d > math.MaxInt16 {
			return fmt.Errorf("%w: %d", ErrBranchRange, d)
		}
		w.S16(int16(d))
	case *Switch:
		w.U8(uint8(in.Op))
		w.Pad(4)
		d, err := delta(in, o.DefaultTarget, member)
		if err != nil {
			return err
		}
		o.Default = d
		w.S32(d)
		if len(o.Targets) != len(o.Keys) {
			return fmt.Errorf("%w: %d keys, %d targets", ErrBadSwitch, len(o.Keys), len(o.Targets))
		}
		if len(o.Deltas) != len(o.Keys) {
			o.Deltas = make([]int32, len(o.Keys))
		}
		if in.Op == TABLESWITCH {
			if len(o.Keys) == 0 {
				return fmt.Errorf("%w: empty tableswitch", ErrBadSwitch)
			}
			w.S32(o.Keys[0])
			w.S32(o.Keys[len(o.Keys)-1])
		} else {
			w.S32(int32(len(o.Keys)))
		}
		for i, t := range o.Targets {
			d, err := delta(in, t, member)
			if err != nil {
				return err
			}
			o.Deltas[i] = d
			if in.Op == LOOKUPSWITCH {
				w.S32(o.Keys[i])
			}
			w.S32(d)
		}
	case *PoolRef:
		w.U8(uint8(in.Op))
		switch in.Op {
		case LDC:
			if o.Index > 0xff {
				return fmt.Errorf("ldc index %d needs ldc_w", o.Index)
			}
			w.U8(uint8(o.Index))
		case INVOKEINTERFACE, INVOKEDYNAMIC:
			w.U16(o.Index)
			w.U8(o.Count)
			w.U8(0)
		case MULTIANEWARRAY:
			w.U16(o.Index)
			w.U8(o.Count)
		default:
			w.U16(o.Index)
		}
	case *Immediate:
		w.U8(uint8(in.Op))
		if in.Op == SIPUSH {
			w.S16(int16(o.Value))
		} else {
			w.U8(uint8(o.Value))
		}
	}
	return nil
}
