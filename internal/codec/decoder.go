package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decoder errors.
var (
	// ErrUnexpectedEOF is returned when the input ends inside a value.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrTrailingBytes is returned by Finish when input remains after the last field.
	ErrTrailingBytes = errors.New("trailing bytes after last field")
)

// Decoder reads primitives from a byte slice.
//
// The first failure is sticky: every later read returns a zero value and
// Err reports the original failure with the offset it occurred at.
type Decoder struct {
	data []byte
	off  int
	err  error
}

// NewDecoder creates a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Err returns the first decoding failure, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// Finish reports the sticky error, or ErrTrailingBytes if input is left over.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.Remaining() != 0 {
		return fmt.Errorf("offset %d: %w (%d bytes)", d.off, ErrTrailingBytes, d.Remaining())
	}
	return nil
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.Remaining() < n {
		d.err = fmt.Errorf("offset %d: %w (need %d bytes, have %d)", d.off, ErrUnexpectedEOF, n, d.Remaining())
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *Decoder) U8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) U32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) U64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *Decoder) I64() int64 {
	return int64(d.U64())
}

// Bool reads a single-byte boolean. Bytes other than 0 and 1 are rejected.
func (d *Decoder) Bool() bool {
	off := d.off
	switch v := d.U8(); {
	case d.err != nil:
		return false
	case v == 0:
		return false
	case v == 1:
		return true
	default:
		d.err = fmt.Errorf("offset %d: invalid bool byte 0x%02x", off, v)
		return false
	}
}

// SeqLen reads a sequence length prefix for elements that each occupy at
// least minElemSize encoded bytes.
//
// A length whose elements cannot fit in the unread input means the input was
// cut short. It is rejected before the caller allocates for it, so the
// caller's allocation stays proportional to the input size.
func (d *Decoder) SeqLen(minElemSize int) int {
	off := d.off
	n := d.U64()
	if d.err != nil {
		return 0
	}
	if minElemSize < 1 {
		minElemSize = 1
	}
	if n > uint64(d.Remaining())/uint64(minElemSize) {
		d.err = fmt.Errorf("offset %d: %w: sequence length %d exceeds remaining input %d (%d bytes per element)",
			off, ErrUnexpectedEOF, n, d.Remaining(), minElemSize)
		return 0
	}
	return int(n)
}

// ByteString reads a length-prefixed byte string.
// An empty string decodes as nil.
func (d *Decoder) ByteString() []byte {
	n := d.SeqLen(1)
	if n == 0 {
		return nil
	}
	b := d.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Variant reads an enum discriminant and checks it against the number of variants.
func (d *Decoder) Variant(count uint32) uint32 {
	off := d.off
	v := d.U32()
	if d.err != nil {
		return 0
	}
	if v >= count {
		d.err = fmt.Errorf("offset %d: variant index %d out of range (%d variants)", off, v, count)
		return 0
	}
	return v
}

// Present reads the tag of an optional value.
func (d *Decoder) Present() bool {
	off := d.off
	switch tag := d.U8(); {
	case d.err != nil:
		return false
	case tag == 0:
		return false
	case tag == 1:
		return true
	default:
		d.err = fmt.Errorf("offset %d: invalid option tag 0x%02x", off, tag)
		return false
	}
}

// OptionU64 reads an optional u64.
func (d *Decoder) OptionU64() *uint64 {
	if !d.Present() {
		return nil
	}
	v := d.U64()
	if d.err != nil {
		return nil
	}
	return &v
}

// OptionI64 reads an optional i64.
func (d *Decoder) OptionI64() *int64 {
	if !d.Present() {
		return nil
	}
	v := d.I64()
	if d.err != nil {
		return nil
	}
	return &v
}
