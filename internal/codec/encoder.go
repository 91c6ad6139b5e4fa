package codec

import "encoding/binary"

// Encoder appends primitives to an in-memory buffer.
// Writes never fail; callers validate values before encoding them.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded buffer. The encoder must not be used afterwards.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) U64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) I64(v int64) {
	e.U64(uint64(v))
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
		return
	}
	e.U8(0)
}

// SeqLen writes a sequence length prefix.
func (e *Encoder) SeqLen(n int) {
	e.U64(uint64(n))
}

// ByteString writes a length-prefixed byte string.
func (e *Encoder) ByteString(b []byte) {
	e.SeqLen(len(b))
	e.buf = append(e.buf, b...)
}

// Variant writes an enum discriminant.
func (e *Encoder) Variant(idx uint32) {
	e.U32(idx)
}

// Some writes the present tag of an optional value. The payload follows.
func (e *Encoder) Some() {
	e.U8(1)
}

// None writes the absent tag of an optional value.
func (e *Encoder) None() {
	e.U8(0)
}

// OptionU64 writes an optional u64.
func (e *Encoder) OptionU64(v *uint64) {
	if v == nil {
		e.None()
		return
	}
	e.Some()
	e.U64(*v)
}

// OptionI64 writes an optional i64.
func (e *Encoder) OptionI64(v *int64) {
	if v == nil {
		e.None()
		return
	}
	e.Some()
	e.I64(*v)
}
