package byteio

import "encoding/binary"

// Writer accumulates big-endian output in memory.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) U16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }

func (w *Writer) U32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

func (w *Writer) U64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *Writer) S8(v int8)   { w.U8(uint8(v)) }
func (w *Writer) S16(v int16) { w.U16(uint16(v)) }
func (w *Writer) S32(v int32) { w.U32(uint32(v)) }

// Write appends p. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Pad appends zero bytes until Len is a multiple of alignment.
func (w *Writer) Pad(alignment int) {
	for alignment > 0 && len(w.buf)%alignment != 0 {
		w.buf = append(w.buf, 0)
	}
}

// PatchU32 overwrites a previously written uint32 at off.
func (w *Writer) PatchU32(off int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[off:], v)
}
