// Package byteio reads and writes the big-endian primitives of the class
// file format.
package byteio

import (
	"encoding/binary"
	"errors"
)

var (
	ErrEOF     = errors.New("byteio: unexpected end of data")
	ErrOverrun = errors.New("byteio: length exceeds remaining data")
)

// Reader is a bounds-checked big-endian cursor over a byte slice.
type Reader struct {
	data []byte
	pos  int
	end  int
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, end: len(data)}
}

// Position returns the current read position.
func (r *Reader) Position() int { return r.pos }

// Remaining returns bytes left to read.
func (r *Reader) Remaining() int { return r.end - r.pos }

// ReadU8 reads an unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.pos >= r.end {
		return 0, ErrEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadS8 reads a signed byte.
func (r *Reader) ReadS8() (int8, error) {
	b, err := r.ReadU8()
	return int8(b), err
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > r.end {
		return 0, ErrEOF
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadS16 reads a big-endian int16.
func (r *Reader) ReadS16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > r.end {
		return 0, ErrEOF
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadS32 reads a big-endian int32.
func (r *Reader) ReadS32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > r.end {
		return 0, ErrEOF
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > r.end {
		return nil, ErrOverrun
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > r.end {
		return ErrEOF
	}
	r.pos += n
	return nil
}

// Align advances position to the next multiple of alignment.
func (r *Reader) Align(alignment int) error {
	if alignment <= 0 {
		return nil
	}
	if rem := r.pos % alignment; rem != 0 {
		return r.Skip(alignment - rem)
	}
	return nil
}
